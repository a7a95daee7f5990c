// Package filestore abstracts where attachment bytes live. The request engine
// only records path/type/name; a failed byte write must abort the attachment
// record, so Save runs before the database transaction.
package filestore

import (
	"context"
	"io"
)

// Provider stores and removes attachment payloads.
type Provider interface {
	// Save writes the object and returns the path to record on the attachment.
	Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectPath string) error
}
