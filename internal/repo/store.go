// Package repo contains all document store access for the shift calendar.
// DocumentStore is the contract; Postgres, SQLite and in-memory backends
// implement it. No business logic lives here, only storage and change
// notification.
package repo

import (
	"context"
	"encoding/json"

	"github.com/pkordes/shiftbook/internal/domain"
)

// UpsertOp describes one merge write. The stored document becomes
//
//	Defaults ⊕ (existing − Unset) ⊕ Patch
//
// where later operands win key by key. Fields missing from Patch are left as
// they were; Defaults only take effect for keys the result would otherwise
// lack, which makes them an atomic set-if-absent.
type UpsertOp struct {
	Patch    domain.Document
	Unset    []string
	Defaults domain.Document
}

// DocumentStore is the persistence surface the service layer depends on.
// Collections are path-like names (e.g. "shifts", "users/42/shifts"); ids are
// unique within a collection.
type DocumentStore interface {
	// Get returns the document with the given id.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (domain.Document, error)

	// Upsert creates or merges into the document and returns the full stored result.
	Upsert(ctx context.Context, collection, id string, op UpsertOp) (domain.Document, error)

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// List returns every document in the collection from one consistent read.
	List(ctx context.Context, collection string) (map[string]domain.Document, error)

	// Watch blocks until ctx is done or the change feed fails. It calls notify
	// once as soon as the feed is live and again after every change to the
	// collection. Several changes may be reported by one call. notify must not
	// block.
	Watch(ctx context.Context, collection string, notify func()) error
}

// applyUpsert computes the merged document for backends that merge in Go.
// existing may be nil when there is no stored document.
func applyUpsert(existing domain.Document, op UpsertOp) domain.Document {
	out := domain.Document{}
	for k, v := range op.Defaults {
		out[k] = cloneValue(v)
	}
	unset := make(map[string]struct{}, len(op.Unset))
	for _, k := range op.Unset {
		unset[k] = struct{}{}
	}
	for k, v := range existing {
		if _, drop := unset[k]; !drop {
			out[k] = cloneValue(v)
		}
	}
	for k, v := range op.Patch {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneDocument(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case domain.Document:
		return cloneDocument(t)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// encodeDocument serialises doc as a JSON object. A nil document encodes as {}
// so SQL jsonb operators never see a JSON null.
func encodeDocument(doc domain.Document) ([]byte, error) {
	if doc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(doc)
}

func decodeDocument(raw []byte) (domain.Document, error) {
	doc := domain.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
