package storage

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const ObjectPrefix = "uploads/"

// ObjectKey returns a date-partitioned random key that keeps the original
// extension, e.g. uploads/2024/05/17/<uuid>.pdf.
func ObjectKey(now time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(ObjectPrefix+now.UTC().Format("2006/01/02"), uuid.NewV4().String()+ext)
}

// ValidObjectKey reports whether key could have been produced by ObjectKey.
// Backends use it to refuse ids pointing outside the upload prefix.
func ValidObjectKey(key string) bool {
	if !strings.HasPrefix(key, ObjectPrefix) {
		return false
	}
	return path.Clean(key) == key && !strings.Contains(key, "..")
}

// BaseName strips any client-supplied directory components from a filename.
func BaseName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	name := path.Base(filename)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
