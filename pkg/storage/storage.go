// Package storage defines where rendered export artifacts are written.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrExists is returned by sinks asked to write over an existing artifact.
var ErrExists = errors.New("artifact already exists")

// Sink persists a named artifact and returns a reference the caller can hand
// back to clients (a file path, a gs:// URI).
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ObjectName joins a prefix and a file name into a slash separated key.
func ObjectName(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// UniqueName keeps name readable and appends a random suffix before the
// extension, so two exports that describe themselves identically are stored
// apart: "MyCrew_Tous_3_contacts_2026-10-15.csv" becomes
// "MyCrew_Tous_3_contacts_2026-10-15_1f0c9a2b7e4d.csv".
func UniqueName(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}
