// Package printer renders bills to HTML and prints them to PDF through a
// headless Chrome tab.
package printer

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/models"
)

//go:embed templates/bill.html
var billHTML string

var billTemplate = template.Must(template.New("bill").Funcs(template.FuncMap{
	"amount": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"inc":    func(i int) int { return i + 1 },
}).Parse(billHTML))

type billPage struct {
	Title     string
	Status    models.Status
	Transport *models.TransportBill
	Grinding  *models.GrindingBill
}

// Render writes the printable HTML of a bill.
func Render(w io.Writer, bill lifecycle.UnifiedBill) error {
	p := billPage{
		Status:    bill.LifecycleState().Current(),
		Transport: bill.Transport,
		Grinding:  bill.Grinding,
	}
	switch bill.Type {
	case models.BillTypeGrinding:
		p.Title = "Flour Grinding Bill"
	default:
		p.Title = "Transportation Bill"
	}
	if err := billTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render bill %s: %w", bill.Number(), err)
	}
	return nil
}

var fileNameReplacer = strings.NewReplacer("/", "-", "\\", "-", " ", "-", "(", "", ")", "", ":", "-")

// FileName is the PDF name used for a bill.
func FileName(bill lifecycle.UnifiedBill) string {
	name := fileNameReplacer.Replace(strings.TrimSpace(bill.Number()))
	if name == "" {
		name = bill.ID()
	}
	return string(bill.Type) + "_" + name + ".pdf"
}

// Chrome prints bills to PDF files in a directory. It drives one browser
// tab, so prints are serialised.
type Chrome struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChrome creates the output directory and a browser context. Chrome
// itself starts on the first print.
func NewChrome(dir string, logger *slog.Logger) (*Chrome, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create print directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := chromedp.NewContext(context.Background())
	return &Chrome{dir: dir, logger: logger, ctx: ctx, cancel: cancel}, nil
}

// Print renders the bill and saves it as an A4 PDF.
func (c *Chrome) Print(ctx context.Context, bill lifecycle.UnifiedBill) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var html bytes.Buffer
	if err := Render(&html, bill); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "fdbms-bill-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(html.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var pdf []byte
	err = chromedp.Run(c.ctx,
		chromedp.Navigate("file://"+tmp.Name()),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to print bill %s: %w", bill.Number(), err)
	}

	out := filepath.Join(c.dir, FileName(bill))
	if err := os.WriteFile(out, pdf, 0644); err != nil {
		return fmt.Errorf("failed to save pdf: %w", err)
	}
	c.logger.Info("Bill printed", "bill_number", bill.Number(), "file", out, "bytes", len(pdf))
	return nil
}

// Close shuts the browser down.
func (c *Chrome) Close() {
	c.cancel()
}

// Log is the printer used when no print directory is configured: it only
// records that a bill would have been printed.
type Log struct {
	Logger *slog.Logger
}

// Print logs the bill.
func (l Log) Print(_ context.Context, bill lifecycle.UnifiedBill) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Printing disabled, skipping bill",
		"bill_type", bill.Type,
		"bill_number", bill.Number(),
	)
	return nil
}
