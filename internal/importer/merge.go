// Package importer reconciles reference data read from spreadsheets with
// the records already on file.
//
// Imported rows never carry the live system's ids, so records are matched
// on a natural key built from domain fields. Merge upserts and never
// deletes; ReplaceAll discards the existing collection and needs an
// explicit confirmation phrase.
package importer

import (
	"errors"
	"fmt"
)

// ConfirmationPhrase must be passed to ReplaceAll verbatim.
const ConfirmationPhrase = "REPLACE ALL"

// ErrConfirmationRequired is returned when a replace is not confirmed.
var ErrConfirmationRequired = errors.New("replace requires confirmation")

// ConfirmationError reports a replace attempted without the phrase. The
// existing collection is untouched.
type ConfirmationError struct {
	Kind     string
	Existing int
	Incoming int
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("replacing %d %s with %d requires typing %q", e.Existing, e.Kind, e.Incoming, ConfirmationPhrase)
}

func (e *ConfirmationError) Unwrap() error {
	return ErrConfirmationRequired
}

// Kind describes how one record type is imported.
type Kind[T any] struct {
	// Name is the plural noun used in messages, e.g. "contracts".
	Name   string
	Schema Schema

	// Key returns the natural key of a record.
	Key func(T) string

	// RecordKey returns the natural key of a resolved row, or false when
	// the row lacks a key field and cannot be imported.
	RecordKey func(Record) (string, bool)

	// Build makes a new record from a resolved row, filling defaults for
	// absent fields. It returns false for rows that cannot be imported.
	Build func(Record) (T, bool)

	// Apply overlays the fields present in a row onto an existing record.
	Apply func(T, Record) T

	// IDs returns a function stamping fresh ids onto new records, given
	// the records that will stay.
	IDs func(existing []T) func(T) T
}

// Result is the outcome of an import.
type Result[T any] struct {
	Records []T `json:"records"`
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
}

// Merge upserts rows into existing by natural key. A row matching a record
// overwrites only the fields it carries; other rows are added with a new
// id. Existing records keep their ids and order, new ones are appended,
// and existing is not modified. Rows that cannot be built are skipped.
func Merge[T any](k Kind[T], existing []T, rows []Row) Result[T] {
	merged := make([]T, len(existing), len(existing)+len(rows))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, rec := range merged {
		key := k.Key(rec)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	assign := k.IDs(existing)
	res := Result[T]{}
	for _, row := range rows {
		rec := k.Schema.Resolve(row)
		key, ok := k.RecordKey(rec)
		if !ok {
			res.Skipped++
			continue
		}
		if i, found := index[key]; found {
			merged[i] = k.Apply(merged[i], rec)
			res.Updated++
			continue
		}
		built, ok := k.Build(rec)
		if !ok {
			res.Skipped++
			continue
		}
		index[key] = len(merged)
		merged = append(merged, assign(built))
		res.Added++
	}

	res.Records = merged
	return res
}

// ReplaceAll builds a fresh collection from rows, numbered from the
// start, to replace existing. Unless confirmation is exactly
// ConfirmationPhrase it returns a *ConfirmationError and no records.
func ReplaceAll[T any](k Kind[T], existing []T, rows []Row, confirmation string) (Result[T], error) {
	if confirmation != ConfirmationPhrase {
		return Result[T]{}, &ConfirmationError{Kind: k.Name, Existing: len(existing), Incoming: len(rows)}
	}

	assign := k.IDs(nil)
	res := Result[T]{Records: make([]T, 0, len(rows)), Removed: len(existing)}
	for _, row := range rows {
		rec := k.Schema.Resolve(row)
		if _, ok := k.RecordKey(rec); !ok {
			res.Skipped++
			continue
		}
		built, ok := k.Build(rec)
		if !ok {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, assign(built))
		res.Added++
	}
	return res, nil
}
