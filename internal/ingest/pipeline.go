package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tanmay/corebank/backend/internal/blob"
	"github.com/tanmay/corebank/backend/internal/docextract"
	"github.com/tanmay/corebank/backend/internal/domain"
)

// TaskError accumulates multiple errors produced during a batch run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ApplicationWriter persists extracted application rows.
type ApplicationWriter interface {
	InsertApplications(ctx context.Context, rows []domain.ApplicationRecord) error
}

// Options tunes the batch pipeline.
type Options struct {
	// Workers is the number of concurrent document processors.
	Workers int
	// BatchSize is how many rows accumulate before a flush to the
	// warehouse.
	BatchSize int
	// MimeType is sent with each extraction request.
	MimeType string
}

// Pipeline drives the batch document flow: list the forms prefix, extract
// text from each document, pull the application fields, and append the rows
// to the applications table in batches.
//
// Field extraction is best-effort by design: a document whose patterns do
// not all match still produces a row with zero-value gaps. Only documents
// that cannot be read or OCR'd at all are counted as failures.
type Pipeline struct {
	store     blob.Store
	extractor docextract.Extractor
	writer    ApplicationWriter
	logger    *slog.Logger
	opts      Options
	nowFn     func() time.Time
}

// New constructs a Pipeline. Zero options fall back to defaults.
func New(store blob.Store, extractor docextract.Extractor, writer ApplicationWriter, logger *slog.Logger, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MimeType == "" {
		opts.MimeType = "application/pdf"
	}
	return &Pipeline{
		store:     store,
		extractor: extractor,
		writer:    writer,
		logger:    logger,
		opts:      opts,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// Stats summarizes one pipeline run.
type Stats struct {
	Listed   int
	Inserted int
	Failed   int
}

// Run processes every document under prefix. It returns partial stats along
// with any accumulated errors; a single bad document does not abort the run,
// but context cancellation does.
func (p *Pipeline) Run(ctx context.Context, prefix string) (Stats, error) {
	names, err := p.store.List(ctx, prefix, ".pdf")
	if err != nil {
		return Stats{}, fmt.Errorf("list documents: %w", err)
	}

	stats := Stats{Listed: len(names)}
	if len(names) == 0 {
		return stats, nil
	}

	nameCh := make(chan string)
	rowCh := make(chan domain.ApplicationRecord, p.opts.BatchSize)
	errCh := make(chan error, len(names))

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range nameCh {
				row, err := p.processDocument(ctx, name)
				if err != nil {
					select {
					case errCh <- err:
					case <-ctx.Done():
						return
					}
					continue
				}
				select {
				case rowCh <- row:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// The collector is the only writer-side goroutine, so batch flushes
	// stay strictly ordered.
	collectorDone := make(chan struct{})
	var inserted int
	var insertErr error
	go func() {
		defer close(collectorDone)
		batch := make([]domain.ApplicationRecord, 0, p.opts.BatchSize)
		flush := func() {
			if len(batch) == 0 || insertErr != nil {
				return
			}
			if err := p.writer.InsertApplications(ctx, batch); err != nil {
				insertErr = err
				return
			}
			inserted += len(batch)
			batch = batch[:0]
		}
		for row := range rowCh {
			batch = append(batch, row)
			if len(batch) >= p.opts.BatchSize {
				flush()
			}
		}
		flush()
	}()

Loop:
	for _, name := range names {
		select {
		case nameCh <- name:
		case <-ctx.Done():
			break Loop
		}
	}
	close(nameCh)
	wg.Wait()
	close(rowCh)
	<-collectorDone
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stats, err
		}
		taskErr.append(err)
	}
	if insertErr != nil {
		taskErr.append(insertErr)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	stats.Inserted = inserted
	stats.Failed = len(taskErr.Errors)
	return stats, taskErr.asError()
}

func (p *Pipeline) processDocument(ctx context.Context, name string) (domain.ApplicationRecord, error) {
	content, err := p.store.Read(ctx, name)
	if err != nil {
		return domain.ApplicationRecord{}, fmt.Errorf("read %s: %w", name, err)
	}

	text, err := p.extractor.ExtractText(ctx, content, p.opts.MimeType)
	if err != nil {
		return domain.ApplicationRecord{}, fmt.Errorf("extract %s: %w", name, err)
	}

	fields := docextract.ParseFields(text)
	if fields.CustomerID == "" && p.logger != nil {
		p.logger.Warn("document yielded no applicant ID", "object", name)
	}

	return domain.ApplicationRecord{
		CustomerID: fields.CustomerID,
		Income:     fields.Income,
		LoanAmount: fields.LoanAmount,
		AppDate:    fields.AppDate,
		FileName:   name,
		IngestedAt: p.nowFn(),
	}, nil
}
