package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fooddept/fdbms/internal/models"
)

// DefaultPause is the wait between two printed bills of a batch.
const DefaultPause = 1500 * time.Millisecond

// Printer renders one bill. Implementations drive a single render target
// and must not be called concurrently.
type Printer interface {
	Print(ctx context.Context, bill UnifiedBill) error
}

// HandOff processes a selection of AG Office bills: the whole selection is
// marked processed and committed before the first bill is printed.
type HandOff struct {
	Machine Machine
	Printer Printer
	Pause   time.Duration
	Sleep   func(time.Duration)
	Logger  *slog.Logger
}

// BatchResult summarises a processed batch.
type BatchResult struct {
	Processed     []UnifiedBill `json:"processed"`
	Rejected      []error       `json:"-"`
	Printed       int           `json:"printed"`
	PrintFailures int           `json:"printFailures"`
}

// Process marks the eligible bills processed, hands them to commit and
// then prints them one after another with Pause between prints. A commit
// error aborts the batch before anything is printed. Once printing starts
// it runs to the end: cancelling ctx does not stop it, and a failed print
// is logged and skipped.
func (h HandOff) Process(ctx context.Context, bills []UnifiedBill, commit func([]UnifiedBill) error) (BatchResult, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	marked, rejected := MarkProcessed(h.Machine, bills)
	result := BatchResult{Rejected: rejected}
	for i, u := range marked {
		if bills[i].LifecycleState().Current() == models.StatusSentToAG {
			result.Processed = append(result.Processed, u)
		}
	}
	if len(result.Processed) == 0 {
		return result, nil
	}

	if err := commit(result.Processed); err != nil {
		return BatchResult{Rejected: rejected}, fmt.Errorf("failed to commit processed bills: %w", err)
	}

	if h.Printer == nil {
		return result, nil
	}

	sleep := h.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	pause := h.Pause
	if pause <= 0 {
		pause = DefaultPause
	}

	printCtx := context.WithoutCancel(ctx)
	for i, u := range result.Processed {
		if i > 0 {
			sleep(pause)
		}
		if err := h.Printer.Print(printCtx, u); err != nil {
			result.PrintFailures++
			logger.Error("failed to print processed bill",
				"bill_id", u.ID(),
				"bill_number", u.Number(),
				"bill_type", u.Type,
				"error", err,
			)
			continue
		}
		result.Printed++
	}

	logger.Info("processed AG Office batch",
		"processed", len(result.Processed),
		"rejected", len(rejected),
		"printed", result.Printed,
	)
	return result, nil
}
