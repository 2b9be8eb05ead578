package filter

import (
	"context"

	"github.com/s0up4200/gplay/protocol"
)

// Filter defines the basic interface for document filters
type Filter interface {
	// Evaluate checks if a document matches the filter criteria
	Evaluate(doc *protocol.Document) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator evaluates filters against documents
type Evaluator interface {
	// Evaluate returns the matching documents in input order
	Evaluate(ctx context.Context, filter CompiledFilter, docs []*protocol.Document) ([]*protocol.Document, error)
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit submits work to the pool
	Submit(ctx context.Context, work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
