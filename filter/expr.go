package filter

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/gplay/protocol"
)

const permissionPrefix = "android.permission."

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.customFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{customFuncs: make(map[string]any)}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exprCompiler struct {
	customFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// a zero document gives the checker every variable and helper type
	env := createRuntimeEnvironment(&protocol.Document{})
	maps.Copy(env, c.customFuncs)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.customFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a document. Documents that make
// the program fail do not match.
func (f *exprFilter) Evaluate(doc *protocol.Document) bool {
	if doc == nil {
		return false
	}

	env := createRuntimeEnvironment(doc)
	maps.Copy(env, f.extra)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// addHelperFunctions adds the document independent helpers. contains,
// startsWith and endsWith are expr operators, so the case-insensitive
// variants use other names.
func addHelperFunctions(env map[string]any) {
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefixFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffixFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["mb"] = func(n int) int64 {
		return int64(n) << 20
	}
}

// createRuntimeEnvironment exposes a document's fields and helpers
func createRuntimeEnvironment(doc *protocol.Document) map[string]any {
	env := make(map[string]any, 32)
	addHelperFunctions(env)

	app := doc.AppDetails()
	if app == nil {
		app = &protocol.AppDetails{}
	}

	var (
		rating       float64
		ratingsCount int
		restriction  int
	)
	if doc.AggregateRating != nil {
		rating = float64(doc.AggregateRating.StarRating)
		ratingsCount = int(doc.AggregateRating.RatingsCount)
	}
	if doc.Availability != nil {
		restriction = int(doc.Availability.Restriction)
	}
	var priceMicros int64
	if len(doc.Offer) > 0 {
		priceMicros = doc.Offer[0].Micros
	}
	downloads := parseDownloads(app.NumDownloads)

	env["Doc"] = doc
	env["Docid"] = doc.Docid
	env["Title"] = doc.Title
	env["Creator"] = doc.Creator
	env["Developer"] = app.DeveloperName
	env["VersionCode"] = int(app.VersionCode)
	env["VersionString"] = app.VersionString
	env["Free"] = doc.IsFree()
	env["Price"] = doc.Price()
	env["PriceMicros"] = priceMicros
	env["Rating"] = rating
	env["RatingsCount"] = ratingsCount
	env["Downloads"] = downloads
	env["Permissions"] = app.Permission
	env["Categories"] = app.AppCategory
	env["InstallationSize"] = app.InstallationSize
	env["ContentRating"] = int(app.ContentRating)
	env["UploadDate"] = app.UploadDate
	env["Restriction"] = restriction
	env["Available"] = doc.Availability == nil || restriction == 1

	env["hasPermission"] = createHasPermissionFunc(app.Permission)
	env["inCategory"] = createInCategoryFunc(app.AppCategory)
	env["downloadsAtLeast"] = func(n int) bool {
		return downloads >= int64(n)
	}

	return env
}

// createHasPermissionFunc accepts both "CAMERA" and
// "android.permission.CAMERA"
func createHasPermissionFunc(permissions []string) func(string) bool {
	return func(name string) bool {
		if !strings.Contains(name, ".") {
			name = permissionPrefix + name
		}
		return slices.ContainsFunc(permissions, func(p string) bool {
			return strings.EqualFold(p, name)
		})
	}
}

func createInCategoryFunc(categories []string) func(string) bool {
	return func(category string) bool {
		return slices.ContainsFunc(categories, func(c string) bool {
			return strings.EqualFold(c, category)
		})
	}
}

// parseDownloads turns "1,000,000+" into 1000000
func parseDownloads(s string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, _ := strconv.ParseInt(digits, 10, 64)
	return n
}
