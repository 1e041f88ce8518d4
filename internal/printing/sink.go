package printing

import (
	"context"
	"time"

	"github.com/fjod/go_pos/internal/document"
	"go.uber.org/zap"
)

// Job is what travels to a printer: the structured document plus ready-made
// markup for HTML-capable devices.
type Job struct {
	ID          string            `json:"id"`
	Printer     string            `json:"printer"`
	Kind        document.Kind     `json:"kind"`
	Document    document.Document `json:"document"`
	HTML        string            `json:"html"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func NewJob(printer string, doc document.Document) (Job, error) {
	html, err := document.RenderHTML(doc)
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:          doc.ID,
		Printer:     printer,
		Kind:        doc.Kind,
		Document:    doc,
		HTML:        string(html),
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// Sink hands print jobs to the print pipeline. It reports only whether the
// job was accepted.
type Sink interface {
	Print(ctx context.Context, job Job) error
}

// FuncSink adapts a function to Sink.
type FuncSink func(ctx context.Context, job Job) error

func (f FuncSink) Print(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// LogSink writes jobs to the log as text receipts. Used when no printer is
// attached.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Print(_ context.Context, job Job) error {
	s.log.Info("print job",
		zap.String("job_id", job.ID),
		zap.String("printer", job.Printer),
		zap.String("kind", string(job.Kind)),
		zap.String("receipt", document.FormatText(job.Document)))
	return nil
}

// WithTimeout bounds every Print on next by d. A zero d returns next as is.
func WithTimeout(next Sink, d time.Duration) Sink {
	if d <= 0 {
		return next
	}
	return FuncSink(func(ctx context.Context, job Job) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Print(ctx, job)
	})
}
