package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// IngestRegistry ingests entries one after another. A source that fails with
// an input or provider error is recorded and the batch continues; a fatal
// error (storage corruption, configuration, cancellation) stops the batch and
// is returned along with the summary so far.
func (o *IngestOrchestrator) IngestRegistry(
	ctx context.Context,
	entries []domain.RegistryEntry,
	opts domain.IngestOptions,
) (*domain.BatchSummary, error) {
	start := o.now()
	summary := &domain.BatchSummary{}

	finish := func(err error) (*domain.BatchSummary, error) {
		summary.Duration = o.now().Sub(start)
		return summary, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		notify(opts, domain.IngestEvent{Source: entry.Name})

		var result *domain.IngestResult
		var err error
		if entry.DocsOnly() {
			result, err = o.IngestDocs(ctx, entry.Name, entry.DocsPath, opts)
		} else {
			result, err = o.IngestAPI(ctx, entry.Name, entry.SpecPath, entry.DocsPath, opts)
		}

		if err != nil {
			notify(opts, domain.IngestEvent{Source: entry.Name, Done: true, Err: err})
			if domain.IsFatal(err) {
				return finish(fmt.Errorf("ingesting %s: %w", entry.Name, err))
			}
			logger.Error("Error ingesting %s: %v", entry.Name, err)
			summary.Failures = append(summary.Failures, domain.SourceFailure{Source: entry.Name, Err: err})
			continue
		}

		summary.Results = append(summary.Results, *result)
		notify(opts, domain.IngestEvent{Source: entry.Name, Done: true, Result: result})
	}

	return finish(nil)
}

func notify(opts domain.IngestOptions, ev domain.IngestEvent) {
	if opts.Progress != nil {
		opts.Progress(ev)
	}
}
