package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/s0up4200/gplay/protocol"
)

// namedPrefix marks a reference to a registered filter, e.g. "@no-camera"
const namedPrefix = "@"

// Manager keeps named filters and evaluates them over document lists
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{filters: make(map[string]CompiledFilter)}

	for _, opt := range opts {
		opt(m)
	}

	if m.compiler == nil {
		m.compiler = NewExprCompiler(WithCache(100))
	}
	if m.evaluator == nil {
		m.evaluator = NewConcurrentEvaluator()
	}

	return m
}

// RegisterFilters compiles and registers filters. Nothing is registered
// if any expression fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expression := range filters {
		filter, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	names := slices.Collect(maps.Keys(m.filters))
	m.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Resolve returns the registered filter for "@name", or compiles
// anything else as an expression
func (m *Manager) Resolve(ref string) (CompiledFilter, error) {
	ref = strings.TrimSpace(ref)
	if name, ok := strings.CutPrefix(ref, namedPrefix); ok {
		filter, exists := m.GetFilter(name)
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrFilterNotFound, name)
		}
		return filter, nil
	}
	return m.compiler.Compile(ref)
}

// Apply resolves ref and returns the matching documents in order
func (m *Manager) Apply(ctx context.Context, ref string, docs []*protocol.Document) ([]*protocol.Document, error) {
	filter, err := m.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return m.evaluator.Evaluate(ctx, filter, docs)
}

// EvaluateAll evaluates every registered filter
func (m *Manager) EvaluateAll(ctx context.Context, docs []*protocol.Document) (map[string][]*protocol.Document, error) {
	m.mu.RLock()
	filters := maps.Clone(m.filters)
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, docs)
}

// Close gracefully shuts down the manager
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}
