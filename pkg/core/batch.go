package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"go.uber.org/zap"
)

const (
	// DefaultBatchDelay is the pause between two consecutive batch items.
	DefaultBatchDelay = 500 * time.Millisecond
	// DefaultBatchTimeout is the ceiling for a whole batch.
	DefaultBatchTimeout = 120 * time.Second
)

// ErrEmptyBatch is returned when a batch has no descriptors.
var ErrEmptyBatch = errors.New("se requiere un array de APIs")

// Runner executes a single API descriptor. *Executor implements it.
type Runner interface {
	Execute(ctx context.Context, api storage.APIDescriptor, credentials, vars map[string]string) Outcome
}

// BatchItem is one entry of a batch result.
type BatchItem struct {
	API   string `json:"api"`
	Index int    `json:"index"`
	Outcome
}

// BatchResult aggregates a batch run. Results are in input order.
type BatchResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Results    []BatchItem `json:"results"`
}

// Batch runs descriptors one after another with a fixed pause between them.
type Batch struct {
	runner     Runner
	delay      time.Duration
	timeout    time.Duration
	logger     *zap.Logger
	onProgress func(done, total int, item BatchItem)
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchDelay sets the pause between items.
func WithBatchDelay(d time.Duration) BatchOption {
	return func(b *Batch) { b.delay = d }
}

// WithBatchTimeout sets the ceiling for the whole batch. Zero disables it.
func WithBatchTimeout(d time.Duration) BatchOption {
	return func(b *Batch) { b.timeout = d }
}

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *zap.Logger) BatchOption {
	return func(b *Batch) { b.logger = logger }
}

// WithProgress registers a callback invoked after each item.
func WithProgress(fn func(done, total int, item BatchItem)) BatchOption {
	return func(b *Batch) { b.onProgress = fn }
}

// NewBatch creates a batch runner over r.
func NewBatch(r Runner, opts ...BatchOption) *Batch {
	b := &Batch{
		runner:  r,
		delay:   DefaultBatchDelay,
		timeout: DefaultBatchTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes apis in order, reusing the same credentials and variables
// for each. A failing or panicking item is recorded and the batch moves
// on. Items not started before the batch ceiling are recorded as failures.
func (b *Batch) Run(ctx context.Context, apis []storage.APIDescriptor, credentials, vars map[string]string) (*BatchResult, error) {
	if len(apis) == 0 {
		return nil, ErrEmptyBatch
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	b.logger.Info("executing batch", zap.Int("apis", len(apis)))

	result := &BatchResult{
		Total:   len(apis),
		Results: make([]BatchItem, 0, len(apis)),
	}

	for i, api := range apis {
		var outcome Outcome
		if err := ctx.Err(); err != nil {
			outcome = Outcome{
				Error:        fmt.Sprintf("lote interrumpido antes de ejecutar: %v", err),
				HumanMessage: "⏱️ El lote superó el tiempo máximo y esta API no se ejecutó",
			}
		} else {
			outcome = b.runOne(ctx, api, credentials, vars)
		}

		item := BatchItem{API: api.Name, Index: i, Outcome: outcome}
		result.Results = append(result.Results, item)
		if outcome.Success {
			result.Successful++
		}

		b.logger.Debug("batch item done",
			zap.Int("index", i),
			zap.String("api", api.Name),
			zap.Bool("success", outcome.Success),
		)
		if b.onProgress != nil {
			b.onProgress(i+1, len(apis), item)
		}

		if i < len(apis)-1 && ctx.Err() == nil {
			sleep(ctx, b.delay)
		}
	}

	result.Failed = result.Total - result.Successful
	b.logger.Info("batch completed",
		zap.Int("successful", result.Successful),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// runOne converts a panic in the runner into a failed outcome.
func (b *Batch) runOne(ctx context.Context, api storage.APIDescriptor, credentials, vars map[string]string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("batch item panicked", zap.String("api", api.Name), zap.Any("panic", r))
			out = Outcome{
				Error:        fmt.Sprintf("%v", r),
				HumanMessage: "❌ Error inesperado al ejecutar la API",
			}
		}
	}()
	return b.runner.Execute(ctx, api, credentials, vars)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
