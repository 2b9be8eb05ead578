package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/gplay/protocol"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the chunk size below which evaluation stays
// sequential
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator evaluates filters over large document lists in
// chunks on a worker pool
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.workerCount <= 0 {
		e.workerCount = 1
	}
	if e.batchSize <= 0 {
		e.batchSize = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the documents matching filter, in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, docs []*protocol.Document) ([]*protocol.Document, error) {
	if len(docs) < e.batchSize {
		return evaluateSequential(filter, docs), nil
	}
	return e.evaluateConcurrent(ctx, filter, docs)
}

// EvaluateBatch evaluates several filters against the same documents
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, docs []*protocol.Document) (map[string][]*protocol.Document, error) {
	results := make(map[string][]*protocol.Document, len(filters))
	for name, filter := range filters {
		matches, err := e.Evaluate(ctx, filter, docs)
		if err != nil {
			return nil, err
		}
		results[name] = matches
	}
	return results, nil
}

func evaluateSequential(filter CompiledFilter, docs []*protocol.Document) []*protocol.Document {
	matches := make([]*protocol.Document, 0, len(docs))
	for _, doc := range docs {
		if filter.Evaluate(doc) {
			matches = append(matches, doc)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, docs []*protocol.Document) ([]*protocol.Document, error) {
	chunkSize := max(len(docs)/e.workerCount, e.batchSize)
	chunks := make([][]*protocol.Document, (len(docs)+chunkSize-1)/chunkSize)

	var wg sync.WaitGroup
	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(docs))

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			chunks[i] = evaluateSequential(filter, docs[start:end])
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matches []*protocol.Document
	for _, chunk := range chunks {
		matches = append(matches, chunk...)
	}
	return matches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
