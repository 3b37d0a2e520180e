package email

import (
	"mime"
	"os"
	"path/filepath"
)

// FileSystem is the narrow file access surface the compiler needs to embed
// attachments. Injecting it keeps attachment handling testable without
// real files on disk.
type FileSystem interface {
	// Exists reports whether path resolves to an existing file.
	Exists(path string) bool

	// ReadBytes returns the full contents of the file at path.
	ReadBytes(path string) ([]byte, error)

	// MimeType returns the content type to declare for the file at path.
	MimeType(path string) string

	// Basename returns the file name to declare for the file at path.
	Basename(path string) string
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) ReadBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MimeType resolves the content type from the file extension, falling
// back to application/octet-stream for unknown extensions.
func (OSFileSystem) MimeType(path string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType
}

func (OSFileSystem) Basename(path string) string {
	return filepath.Base(path)
}
