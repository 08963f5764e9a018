// Package db is a thin relational database layer: a capability interface implemented
// by interchangeable backends, a factory picking one by its tag, and a helper assembling
// literal SQL statements.
package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBackend   = errors.New("unknown database backend")
	ErrNotConnected     = errors.New("database is not connected")
	ErrAlreadyConnected = errors.New("database is already connected")
	ErrEmptyDSN         = errors.New("empty data source name")
)

// Backend is a single connection to a database. Implementations aren't safe for
// concurrent use: callers sharing one must serialize access on their own.
type Backend interface {
	// Connect opens the connection. The DSN is passed to the driver as is.
	Connect(dsn string) error
	// Disconnect closes the connection. Disconnecting an unconnected backend is a no-op.
	Disconnect() error
	// Execute runs a statement that returns no rows.
	Execute(sql string) error
	// Query runs a statement and collects all the rows it returned. Failures are
	// reported through the result.
	Query(sql string) QueryResult
}

// QueryResult is the outcome of a query. Cells are in the order of the queried columns,
// NULLs are rendered as empty strings.
type QueryResult struct {
	Success bool
	Rows    [][]string
	Error   string
}

func failed(err error) QueryResult {
	return QueryResult{Error: err.Error()}
}

// Err returns the query failure as an error, or nil if the query succeeded.
func (q QueryResult) Err() error {
	if q.Success {
		return nil
	}

	return errors.New(q.Error)
}

type Type string

const (
	// SQLite stores the database in a file. DSN is the path to it, optionally prefixed
	// with file: and followed by query parameters.
	SQLite Type = "sqlite"
	// Memory keeps a private database in memory. DSN is ignored; the data is gone
	// once disconnected.
	Memory Type = "memory"
)

// Types lists all known backend tags.
func Types() []Type {
	return []Type{SQLite, Memory}
}

// New returns an unconnected backend matching the tag. An unknown tag results in
// ErrUnknownBackend and a nil backend.
func New(tag Type) (Backend, error) {
	switch Type(strings.ToLower(string(tag))) {
	case SQLite:
		return newSQLite(), nil
	case Memory:
		return newMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, tag)
	}
}
