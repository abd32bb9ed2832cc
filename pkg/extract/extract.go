package extract

import (
	"context"
	"fmt"

	"github.com/exstruct/exstruct/pkg/provider"
	"github.com/exstruct/exstruct/pkg/schema"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const instructions = `Extract the requested fields from the document.
Use null for optional fields the document does not contain. Report values
exactly as the document states them.`

// ExtractOne extracts one record from one document. The response payload is
// validated locally against the compiled record type before it is returned;
// provider-side schema guarantees are trusted but not assumed infallible.
// Retryable provider failures are retried with backoff up to the configured
// attempt count.
func (s *Session) ExtractOne(ctx context.Context, document string) (schema.Record, error) {
	requestID := uuid.NewString()

	logger := s.logger.With("request_id", requestID, "record_type", s.recordType.Name())

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	completion, err := retry.DoWithData(
		func() (*provider.Completion, error) {
			return s.complete(ctx, document)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.RetryIf(provider.IsRetryable),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn("retrying extraction call", "attempt", attempt+1, "error", err)
		}),
	)

	if err != nil {
		return nil, err
	}

	record, err := s.recordType.Validate(completion.Data)

	if err != nil {
		logger.Error("provider payload failed local validation", "error", err)
		return nil, err
	}

	logger.Debug("document extracted", "model", completion.Model)

	return record, nil
}

func (s *Session) complete(ctx context.Context, document string) (*provider.Completion, error) {
	if s.callTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	return s.completer.Complete(ctx, document, &provider.CompleteOptions{
		Instructions: instructions,

		Schema: s.target,

		Model: s.model,
	})
}

// Extract extracts one record per document, preserving input order in the
// output. The first failing document aborts the batch and propagates its
// error; remaining documents are left unprocessed. With a concurrency bound
// above one, documents are dispatched in parallel and gathered by index, so
// ordering never depends on completion order.
func (s *Session) Extract(ctx context.Context, documents []string) ([]schema.Record, error) {
	results := make([]schema.Record, len(documents))

	if s.concurrency < 2 {
		for i, document := range documents {
			record, err := s.ExtractOne(ctx, document)

			if err != nil {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}

			results[i] = record
		}

		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, document := range documents {
		g.Go(func() error {
			record, err := s.ExtractOne(ctx, document)

			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}

			results[i] = record

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Outcome is the per-document result of a best-effort batch.
type Outcome struct {
	Index int

	Record schema.Record

	Err error
}

// ExtractAll processes every document and reports a per-document outcome
// instead of aborting on the first failure. No document is ever dropped:
// the result always holds exactly one outcome per input, in input order.
// When the context is cancelled mid-batch, no further calls are issued and
// the untouched documents carry the context's error, so partial results up
// to the cancellation point remain retrievable.
func (s *Session) ExtractAll(ctx context.Context, documents []string) []Outcome {
	outcomes := make([]Outcome, len(documents))

	for i := range documents {
		outcomes[i].Index = i
	}

	if s.concurrency < 2 {
		for i, document := range documents {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				continue
			}

			outcomes[i].Record, outcomes[i].Err = s.ExtractOne(ctx, document)
		}

		return outcomes
	}

	// Plain group without context cancellation: one failure must not abort
	// the siblings.
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, document := range documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}

			outcomes[i].Record, outcomes[i].Err = s.ExtractOne(ctx, document)

			return nil
		})
	}

	g.Wait()

	return outcomes
}

// Run is the complete workflow from an informal description to extracted
// records: resolve requirements, compile the record type once, extract from
// every document. Reuse a Session instead when processing multiple batches
// with the same contract.
func Run(ctx context.Context, description string, documents []string, options ...Option) ([]schema.Record, error) {
	session, err := New(ctx, append(options, WithDescription(description))...)

	if err != nil {
		return nil, err
	}

	return session.Extract(ctx, documents)
}
