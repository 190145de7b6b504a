// Package multipart implements streaming parsing of multipart/form-data
// request bodies. The parser walks the body in a single pass, so part
// boundaries are resolved without buffering whole parts in memory; bodies
// above a configurable threshold are spilled to temporary files.
package multipart
