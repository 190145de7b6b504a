package multipart

import "fmt"

// MalformedRequestError reports a request whose headers rule out multipart
// parsing before the body is touched: the Content-Type header is missing,
// is not a multipart media type, or carries no boundary parameter.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return "multipart: malformed request: " + e.Reason
}

// MalformedBodyError reports a body that violates the multipart framing:
// it ends before the terminating boundary, or a part's header block never
// reaches its blank-line terminator.
type MalformedBodyError struct {
	Reason string
	Err    error
}

func (e *MalformedBodyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("multipart: malformed body: %s: %s", e.Reason, e.Err)
	}
	return "multipart: malformed body: " + e.Reason
}

func (e *MalformedBodyError) Unwrap() error {
	return e.Err
}

// MissingPartError reports a Single lookup for a name with no parts.
type MissingPartError struct {
	Name string
}

func (e *MissingPartError) Error() string {
	return fmt.Sprintf("multipart: no part with name %q", e.Name)
}

// AmbiguousPartError reports a Single lookup for a name shared by more
// than one part.
type AmbiguousPartError struct {
	Name  string
	Count int
}

func (e *AmbiguousPartError) Error() string {
	return fmt.Sprintf("multipart: %d parts with name %q, expected exactly one", e.Count, e.Name)
}
