package expression

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain/patterns"
)

// Argument is a named parameter of a pointcut signature. Its type pattern
// also accepts subtypes of the declared type.
type Argument struct {
	Name string
	Type patterns.TypePattern
}

func NewArgument(name, typePattern string) (Argument, error) {
	name = strings.TrimSpace(name)
	if !isSimpleName(name) {
		return Argument{}, errors.Wrapf(ErrInvalidArgument, "argument name %q", name)
	}
	typePattern = strings.TrimSpace(typePattern)
	if !strings.HasSuffix(typePattern, patterns.SubtypeMarker) {
		typePattern += patterns.SubtypeMarker
	}
	tp, err := patterns.CompileType(typePattern)
	if err != nil {
		return Argument{}, errors.Wrapf(ErrInvalidArgument, "argument %s: %v", name, err)
	}
	if tp.IsEagerWildcard() {
		return Argument{}, errors.Wrapf(ErrInvalidArgument, "argument %s: eager wildcard is not a type", name)
	}
	return Argument{Name: name, Type: tp}, nil
}

func MustArgument(name, typePattern string) Argument {
	a, err := NewArgument(name, typePattern)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Argument) String() string {
	return a.Type.String() + " " + a.Name
}

// Bindings maps a bound argument name to its position in the actual
// parameter list of the matched join point.
type Bindings map[string]int

func (b Bindings) clone() Bindings {
	c := make(Bindings, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// ExpressionInfo is an immutable, fully resolved pointcut: the tree, its
// argument signature and the bundles of every pointcut it references. It is
// safe for concurrent use.
type ExpressionInfo struct {
	id             uuid.UUID
	namespace      string
	source         string
	root           pointcut.Node
	arguments      []Argument
	argumentIndex  map[string]int
	references     map[string]*ExpressionInfo
	dependencies   map[string]struct{}
	hasControlFlow bool
	metrics        recorder
}

// DependsOn reports whether the bundle resolves, directly or transitively,
// a pointcut defined in namespace.
func (e *ExpressionInfo) DependsOn(namespace string) bool {
	_, ok := e.dependencies[namespace]
	return ok
}

func (e *ExpressionInfo) ID() uuid.UUID {
	return e.id
}

func (e *ExpressionInfo) Namespace() string {
	return e.namespace
}

func (e *ExpressionInfo) Source() string {
	return e.source
}

func (e *ExpressionInfo) Root() pointcut.Node {
	return e.root
}

// HasControlFlow reports whether the expression, including every pointcut
// it references, contains a cflow or cflowbelow predicate.
func (e *ExpressionInfo) HasControlFlow() bool {
	return e.hasControlFlow
}

func (e *ExpressionInfo) Arguments() []Argument {
	return append([]Argument(nil), e.arguments...)
}

func (e *ExpressionInfo) ArgumentNames() []string {
	names := make([]string, len(e.arguments))
	for i, a := range e.arguments {
		names[i] = a.Name
	}
	return names
}

// ArgumentIndex returns the signature position of a bound name, or -1.
func (e *ExpressionInfo) ArgumentIndex(name string) int {
	if i, ok := e.argumentIndex[name]; ok {
		return i
	}
	return -1
}

func (e *ExpressionInfo) ArgumentType(name string) (patterns.TypePattern, bool) {
	i, ok := e.argumentIndex[name]
	if !ok {
		return patterns.TypePattern{}, false
	}
	return e.arguments[i].Type, true
}

func (e *ExpressionInfo) ArgumentNameAt(index int) string {
	if index < 0 || index >= len(e.arguments) {
		return ""
	}
	return e.arguments[index].Name
}

// Positions orders bindings by the argument signature. Unbound arguments get -1.
func (e *ExpressionInfo) Positions(bindings Bindings) []int {
	positions := make([]int, len(e.arguments))
	for i, a := range e.arguments {
		if pos, ok := bindings[a.Name]; ok {
			positions[i] = pos
		} else {
			positions[i] = -1
		}
	}
	return positions
}

func (e *ExpressionInfo) String() string {
	return e.namespace + ": " + e.source
}

// Match evaluates the expression against a fully described join point.
// Control-flow predicates count as satisfied here; MatchCflowStack decides
// them at run time.
func (e *ExpressionInfo) Match(ctx *Context) bool {
	w := walker{mode: modeMatch, info: e, ctx: ctx}
	result := w.eval(e.root) == True
	e.metrics.match(evaluatorMatch, result)
	return result
}

// FilterClass answers whether any member of the class described by ctx could
// match. A false result is definite; true may be a false positive.
func (e *ExpressionInfo) FilterClass(ctx *Context) bool {
	w := walker{mode: modeClassFilter, info: e, ctx: ctx}
	result := w.eval(e.root) != False
	e.metrics.match(evaluatorClassFilter, result)
	return result
}

// MatchCflow reports whether the join point matches one of the cflow
// sub-expressions, i.e. whether entering it must push a control-flow frame.
func (e *ExpressionInfo) MatchCflow(ctx *Context) bool {
	ctx.hasVisitedCflow = false
	ctx.cflowResult = false
	w := walker{mode: modeCflowStatic, info: e, ctx: ctx}
	raw := w.eval(e.root)

	var result bool
	switch {
	case ctx.hasVisitedCflow:
		result = ctx.cflowResult
	case ctx.inCflowSubtree:
		result = raw == True
	}
	e.metrics.match(evaluatorCflow, result)
	return result
}

// MatchCflowStack evaluates the expression at run time. frames are the
// contexts of the join points the goroutine is currently inside, oldest
// first; local describes the join point being executed.
func (e *ExpressionInfo) MatchCflowStack(frames []*Context, local *Context) bool {
	if len(frames) == 0 && e.hasControlFlow {
		e.metrics.match(evaluatorCflowStack, false)
		return false
	}
	w := walker{mode: modeCflowStack, info: e, ctx: local, local: local, frames: frames}
	result := w.eval(e.root) == True
	e.metrics.match(evaluatorCflowStack, result)
	return result
}

// MapArguments matches the join point and, on success, returns the actual
// parameter position of every bound argument name. The bindings are also
// recorded on the context.
func (e *ExpressionInfo) MapArguments(ctx *Context) (Bindings, bool) {
	w := walker{mode: modeArgs, info: e, ctx: ctx, bindings: Bindings{}}
	if w.eval(e.root) != True {
		ctx.bindings = nil
		e.metrics.match(evaluatorArgs, false)
		return nil, false
	}
	ctx.bindings = w.bindings
	e.metrics.match(evaluatorArgs, true)
	return w.bindings.clone(), true
}

func (e *ExpressionInfo) reference(n pointcut.ReferenceNode) *ExpressionInfo {
	return e.references[n.Name()]
}

func isSimpleName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".()*, \t")
}
