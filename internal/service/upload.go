package service

import (
	"io"
	"path"

	"github.com/google/uuid"
)

// FileUpload carries one uploaded file from the API layer into a service.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// objectKey builds a unique storage key under the given prefix, keeping
// the original file extension so content types stay recognizable.
func objectKey(prefix, filename string) string {
	return prefix + "/" + uuid.NewString() + path.Ext(filename)
}
