package multipart_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piotrkot/takes/multipart"
)

func TestFakeRequestRoundTrips(t *testing.T) {
	req, err := multipart.NewFake("AaB0zz",
		multipart.FieldPart("f-1", "my picture"),
		multipart.FilePart("upload", "cat.png", strings.NewReader("png bytes")),
	)
	require.NoError(t, err)

	ct, ok := req.Header("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "multipart/form-data; boundary=AaB0zz", ct)

	form, err := multipart.Parse(req, multipart.Options{})
	require.NoError(t, err)
	defer form.Close()
	smart := multipart.NewSmart(form)

	field, err := smart.Single("f-1")
	require.NoError(t, err)
	data, err := io.ReadAll(field.Body())
	require.NoError(t, err)
	assert.Equal(t, "my picture", string(data))

	file, err := smart.Single("upload")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", file.FileName())
	ct, ok = file.Header("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", ct)
}

func TestFakePicksRandomBoundary(t *testing.T) {
	req, err := multipart.NewFake("", multipart.FieldPart("a", "b"))
	require.NoError(t, err)
	ct, _ := req.Header("Content-Type")
	assert.Contains(t, ct, "boundary=")

	form, err := multipart.Parse(req, multipart.Options{})
	require.NoError(t, err)
	defer form.Close()
	require.Len(t, form.Parts(), 1)
}

func TestFakeRejectsBadBoundaries(t *testing.T) {
	for _, boundary := range []string{
		strings.Repeat("b", 70),
		"white space*",
	} {
		_, err := multipart.NewFake(boundary, multipart.FieldPart("a", "b"))
		assert.Error(t, err, "boundary %q accepted", boundary)
	}
}
