package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geocoder89/learnhub/internal/idgen"
)

// id collisions are astronomically unlikely with 128 random bits; the retry
// only guards against a backend reporting ErrIDTaken.
const maxIDAttempts = 3

// Record kinds. The postgres backend indexes users.email and
// enrollments.user_id by these names.
const (
	KindUsers         = "users"
	KindCourses       = "courses"
	KindEnrollments   = "enrollments"
	KindPayments      = "payments"
	KindNotifications = "notifications"
	KindTokens        = "tokens"
)

// Table is a typed view over one kind of record.
type Table[T any] struct {
	backend Backend
	kind    string
	prefix  string
}

func NewTable[T any](backend Backend, kind, prefix string) *Table[T] {
	return &Table[T]{backend: backend, kind: kind, prefix: prefix}
}

func (t *Table[T]) Kind() string { return t.kind }

// Put inserts the record built for a freshly generated id. It never
// overwrites an existing record.
func (t *Table[T]) Put(ctx context.Context, build func(id string) T) (T, error) {
	var zero T

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		rec := build(idgen.New(t.prefix))

		err := t.Insert(ctx, rec)
		if errors.Is(err, ErrIDTaken) {
			continue
		}
		if err != nil {
			return zero, err
		}

		return rec, nil
	}

	return zero, fmt.Errorf("insert %s: %w", t.kind, ErrIDTaken)
}

// Insert stores a record under the id it already carries. Used for records
// keyed by something other than a generated id (token digests); fails with
// ErrIDTaken instead of overwriting.
func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.kind, err)
	}

	id, err := docID(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.kind, err)
	}

	return t.backend.Insert(ctx, t.kind, id, doc)
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T

	doc, err := t.backend.Fetch(ctx, t.kind, id)
	if err != nil {
		return rec, err
	}

	if err := json.Unmarshal(doc, &rec); err != nil {
		return rec, fmt.Errorf("decode %s %s: %w", t.kind, id, err)
	}

	return rec, nil
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	docs, err := t.backend.All(ctx, t.kind)
	if err != nil {
		return nil, err
	}

	return t.decodeAll(docs)
}

// QueryByField returns the records whose string field (JSON name) equals value.
func (t *Table[T]) QueryByField(ctx context.Context, field, value string) ([]T, error) {
	docs, err := t.backend.Match(ctx, t.kind, field, value)
	if err != nil {
		return nil, err
	}

	return t.decodeAll(docs)
}

// Update applies mutate to the stored record under the backend's
// per-record atomicity guarantee and returns the new version.
func (t *Table[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var out T

	doc, err := t.backend.Modify(ctx, t.kind, id, func(current []byte) ([]byte, error) {
		var rec T
		if err := json.Unmarshal(current, &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", t.kind, id, err)
		}

		if err := mutate(&rec); err != nil {
			return nil, err
		}

		return json.Marshal(rec)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(doc, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", t.kind, id, err)
	}

	return out, nil
}

func (t *Table[T]) decodeAll(docs [][]byte) ([]T, error) {
	out := make([]T, 0, len(docs))

	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.kind, err)
		}
		out = append(out, rec)
	}

	return out, nil
}

// docID reads the "id" field every record type serializes.
func docID(doc []byte) (string, error) {
	var head struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(doc, &head); err != nil {
		return "", err
	}

	if head.ID == "" {
		return "", errors.New("record has no id")
	}

	return head.ID, nil
}
