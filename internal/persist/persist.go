// Package persist guards single-bill saves against the storage budget.
package persist

import (
	"encoding/json"
	"log/slog"
)

// DefaultBudget is the largest serialised bill written with its
// attachment payloads, 4.5 MiB.
const DefaultBudget = 4718592

// Strippable is a record that can drop its attachment payloads.
type Strippable[T any] interface {
	WithoutAttachmentPayloads() T
}

// Guard holds the size budget for a save. The zero Guard uses
// DefaultBudget.
type Guard struct {
	Budget int
	Logger *slog.Logger
}

// Result describes a completed save.
type Result struct {
	// Bytes is the serialised size of the record as first measured, or -1
	// when it could not be serialised.
	Bytes int `json:"bytes"`

	// StrippedAttachments is set when the record was written without its
	// attachment payloads.
	StrippedAttachments bool `json:"strippedAttachments"`
}

// Save writes record through write. When the serialised record exceeds
// the budget, or cannot be serialised at all, every attachment payload is
// dropped and the stripped record is written instead; attachment ids,
// names and types are kept. Only an error from write is returned.
func Save[T Strippable[T]](g Guard, record T, write func(T) error) (Result, error) {
	budget := g.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := Result{Bytes: -1}
	data, err := json.Marshal(record)
	if err == nil {
		result.Bytes = len(data)
	}

	switch {
	case err != nil:
		logger.Warn("bill could not be measured, stripping attachment data", "error", err)
		record = record.WithoutAttachmentPayloads()
		result.StrippedAttachments = true
	case len(data) > budget:
		logger.Warn("bill exceeds storage budget, stripping attachment data",
			"size_bytes", len(data),
			"budget_bytes", budget,
		)
		record = record.WithoutAttachmentPayloads()
		result.StrippedAttachments = true
	}

	if err := write(record); err != nil {
		return result, err
	}
	return result, nil
}
