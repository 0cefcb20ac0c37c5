// Package store is the identifier-keyed record store shared by every
// service. A Table[T] encodes records as JSON documents and delegates
// persistence to a Backend; the memory, postgres and redis backends live
// under internal/repo and honour the same contract.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrIDTaken is returned by Backend.Insert when the id already exists.
	ErrIDTaken = errors.New("record id already taken")
	// ErrUnavailable marks connectivity failures of a networked backend.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrConflict is returned by Backend.Insert when another record of the
	// kind already holds the value of its unique field.
	ErrConflict = errors.New("unique field value already taken")
)

// UniqueFields names, per kind, the string field no two records may share.
// Backends check it on Insert only; records of these kinds are never
// modified.
var UniqueFields = map[string]string{
	KindUsers: "email",
}

// Backend persists opaque JSON documents grouped by kind.
// All and Match return documents ordered by id. Insert fails with
// ErrIDTaken or ErrConflict rather than overwrite or duplicate.
type Backend interface {
	Insert(ctx context.Context, kind, id string, doc []byte) error
	Fetch(ctx context.Context, kind, id string) ([]byte, error)
	All(ctx context.Context, kind string) ([][]byte, error)
	Match(ctx context.Context, kind, field, value string) ([][]byte, error)
	// Modify atomically replaces the document under id with fn's result.
	Modify(ctx context.Context, kind, id string, fn func(doc []byte) ([]byte, error)) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Unavailable wraps a transport/driver error so callers can test for
// ErrUnavailable while the driver error stays inspectable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// MatchField reports whether the JSON object doc has a string field equal
// to value. Backends without server-side filtering use it to scan.
func MatchField(doc []byte, field, value string) bool {
	s, ok := FieldValue(doc, field)
	return ok && s == value
}

// FieldValue extracts a string field from the JSON object doc.
func FieldValue(doc []byte, field string) (string, bool) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", false
	}

	raw, ok := fields[field]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}
