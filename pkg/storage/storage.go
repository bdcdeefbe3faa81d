// Package storage persists whole JSON documents, one per record collection.
package storage

import (
	"context"
	"errors"
)

// Driver names a document backend implementation.
type Driver string

const (
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
	DriverS3       Driver = "s3"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ErrDocumentNotFound is returned when a document has never been written.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentBackend reads and overwrites named documents in full.
type DocumentBackend interface {
	Driver() Driver
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// EnsureDocument writes initial when the named document does not exist yet.
func EnsureDocument(ctx context.Context, backend DocumentBackend, name string, initial []byte) (bool, error) {
	_, err := backend.Read(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrDocumentNotFound) {
		return false, err
	}
	if err := backend.Write(ctx, name, initial); err != nil {
		return false, err
	}
	return true, nil
}
