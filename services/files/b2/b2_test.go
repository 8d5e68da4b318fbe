package b2files

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classpoll/core"
)

func TestObjectKey(t *testing.T) {
	orig := newID
	newID = func() string { return "id-1" }
	t.Cleanup(func() { newID = orig })

	tests := []struct {
		filename string
		want     string
	}{
		{filename: "annales.pdf", want: "resources/id-1/annales.pdf"},
		{filename: "/home/prof/Cours de maths.pdf", want: "resources/id-1/Cours-de-maths.pdf"},
		{filename: "", want: "resources/id-1/file"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, objectKey(tt.filename))
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", contentType("a.PDF"))
	assert.Equal(t, "application/octet-stream", contentType("notes"))
}

func TestOpen_missingConfig(t *testing.T) {
	_, err := Open(context.Background(), core.B2Config{AccountID: "id"})
	assert.Error(t, err)
}
