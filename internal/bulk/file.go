package bulk

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// CSVType is the only declared type accepted for upload
const CSVType = "text/csv"

// File is a user-selected upload. DeclaredType plays the role of the
// browser-reported MIME type; the content is never inspected locally.
type File struct {
	Name         string
	DeclaredType string
	Open         func() (io.ReadCloser, error)
}

// FileFromPath describes a file on disk
func FileFromPath(path string) File {
	return File{
		Name:         filepath.Base(path),
		DeclaredType: DeclaredType(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// DeclaredType maps a file name to its media type by extension
func DeclaredType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		return CSVType
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	if media, _, err := mime.ParseMediaType(t); err == nil {
		return media
	}
	return t
}
