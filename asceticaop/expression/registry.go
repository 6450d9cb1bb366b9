package expression

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/config"
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/signals"
)

// Parser turns expression text into a tree. Parsing is not part of this
// package; the registry only needs it for Define and Expression.
type Parser interface {
	Parse(source string) (pointcut.Node, error)
}

type ParserFunc func(source string) (pointcut.Node, error)

func (f ParserFunc) Parse(source string) (pointcut.Node, error) {
	return f(source)
}

type Option func(*Registry)

func WithParser(parser Parser) Option {
	return func(r *Registry) {
		r.parser = parser
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithCacheSize bounds the cache of anonymous expressions. Zero disables it.
func WithCacheSize(size int) Option {
	return func(r *Registry) {
		r.cacheSize = size
	}
}

func WithMetrics(enabled bool) Option {
	return func(r *Registry) {
		r.metrics = recorder{enabled: enabled}
	}
}

// WithConfig applies the registry, metrics and logging sections. The logger
// writes to stderr; pass WithLogger after it to log elsewhere.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) {
		r.logger = cfg.Logger(os.Stderr)
		r.cacheSize = cfg.Registry.ExpressionCacheSize
		r.metrics = recorder{enabled: cfg.Metrics.Enabled}
	}
}

// DefinedEvent is emitted after a name is bound in a namespace.
type DefinedEvent struct {
	Namespace string
	Name      string
	Info      *ExpressionInfo
}

// UnloadedEvent is emitted after a namespace is dropped. Weavers holding
// shadow-match results for its pointcuts should discard them.
type UnloadedEvent struct {
	Namespace string
	Evicted   int
}

type cacheKey struct {
	namespace string
	source    string
	signature string
}

// Registry is the directory of named pointcuts, grouped by namespace.
// Namespaces are created on first use and can be unloaded as a whole.
// A Registry is safe for concurrent use.
type Registry struct {
	namespaces sync.Map
	parser     Parser
	logger     *slog.Logger
	metrics    recorder
	cacheSize  int
	cache      *lruCache[cacheKey, *ExpressionInfo]
	group      singleflight.Group
	defined    *signals.SignalImp[DefinedEvent]
	unloaded   *signals.SignalImp[UnloadedEvent]
}

func NewRegistry(opts ...Option) *Registry {
	cfg := config.Default()
	r := &Registry{
		logger:    slog.Default(),
		metrics:   recorder{enabled: cfg.Metrics.Enabled},
		cacheSize: cfg.Registry.ExpressionCacheSize,
		defined:   signals.NewSignal[DefinedEvent](),
		unloaded:  signals.NewSignal[UnloadedEvent](),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newLruCache[cacheKey, *ExpressionInfo](r.cacheSize)
	return r
}

func (r *Registry) Defined() signals.Signal[DefinedEvent] {
	return r.defined
}

func (r *Registry) Unloaded() signals.Signal[UnloadedEvent] {
	return r.unloaded
}

// Namespace returns the namespace with the given name, creating it if needed.
func (r *Registry) Namespace(name string) *Namespace {
	if ns, ok := r.namespaces.Load(name); ok {
		return ns.(*Namespace)
	}
	ns, loaded := r.namespaces.LoadOrStore(name, &Namespace{name: name, registry: r})
	if !loaded {
		r.metrics.namespaces(1)
		r.logger.Debug("pointcut namespace created", slog.String("namespace", name))
	}
	return ns.(*Namespace)
}

func (r *Registry) Lookup(name string) (*Namespace, bool) {
	ns, ok := r.namespaces.Load(name)
	if !ok {
		return nil, false
	}
	return ns.(*Namespace), true
}

func (r *Registry) Namespaces() []string {
	var names []string
	r.namespaces.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Unload drops a namespace, the cached expressions compiled in it and the
// cached expressions of other namespaces referring to it.
// Bundles already resolved against it stay valid.
func (r *Registry) Unload(name string) bool {
	if _, loaded := r.namespaces.LoadAndDelete(name); !loaded {
		return false
	}
	evicted := r.cache.removeIf(func(key cacheKey, info *ExpressionInfo) bool {
		return key.namespace == name || info.DependsOn(name)
	})
	r.metrics.namespaces(-1)
	r.logger.Debug("pointcut namespace unloaded",
		slog.String("namespace", name),
		slog.Int("evicted", evicted),
	)
	r.unloaded.Notify(UnloadedEvent{Namespace: name, Evicted: evicted})
	return true
}

// Resolve finds the pointcut a reference names. An undotted name is looked up
// in namespace, a dotted one in the namespace named by its prefix.
func (r *Registry) Resolve(namespace, reference string) (*ExpressionInfo, error) {
	nsName, name := namespace, reference
	if i := strings.LastIndex(reference, "."); i >= 0 {
		nsName, name = reference[:i], reference[i+1:]
	}
	if ns, ok := r.Lookup(nsName); ok {
		if info, ok := ns.Lookup(name); ok {
			return info, nil
		}
	}
	return nil, errors.Wrapf(ErrUnresolvedReference, "%q in namespace %q", reference, namespace)
}

// Compile builds an anonymous bundle for a tree. References are resolved
// against namespace.
func (r *Registry) Compile(ctx context.Context, namespace string, root pointcut.Node, args ...Argument) (*ExpressionInfo, error) {
	source := ""
	if root != nil {
		source = root.String()
	}
	return r.compile(ctx, namespace, source, root, args)
}

// Expression parses and compiles anonymous expression text. Results are
// cached per namespace and text.
func (r *Registry) Expression(ctx context.Context, namespace, source string, args ...Argument) (*ExpressionInfo, error) {
	key := cacheKey{namespace: namespace, source: source, signature: signature(args)}
	if info, ok := r.cache.get(key); ok {
		return info, nil
	}
	v, err, _ := r.group.Do(key.namespace+"\x00"+key.source+"\x00"+key.signature, func() (any, error) {
		root, err := r.parse(namespace, source)
		if err != nil {
			return nil, err
		}
		info, err := r.compile(ctx, namespace, source, root, args)
		if err != nil {
			return nil, err
		}
		r.cache.add(key, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ExpressionInfo), nil
}

func (r *Registry) parse(namespace, source string) (pointcut.Node, error) {
	if r.parser == nil {
		return nil, &DefinitionError{Namespace: namespace, Expression: source, Err: ErrNoParser}
	}
	root, err := r.parser.Parse(source)
	if err != nil {
		return nil, &DefinitionError{
			Namespace:  namespace,
			Expression: source,
			Err:        errors.Wrapf(ErrMalformedExpression, "%v", err),
		}
	}
	return root, nil
}

func (r *Registry) compile(ctx context.Context, namespace, source string, root pointcut.Node, args []Argument) (*ExpressionInfo, error) {
	_, span := tracer.Start(ctx, "expression.Compile", trace.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("expression", source),
	))
	defer span.End()

	start := time.Now()
	info, err := r.build(namespace, source, root, args)
	r.metrics.definition(err, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "definition rejected")
		r.logger.Warn("pointcut definition rejected",
			slog.String("namespace", namespace),
			slog.String("expression", source),
			slog.String("error", err.Error()),
		)
		return nil, &DefinitionError{Namespace: namespace, Expression: source, Err: err}
	}
	span.SetAttributes(
		attribute.String("id", info.id.String()),
		attribute.Bool("has_control_flow", info.hasControlFlow),
	)
	return info, nil
}

// build is all or nothing: every problem of the definition is reported
// together and no bundle escapes unless all references resolve.
func (r *Registry) build(namespace, source string, root pointcut.Node, args []Argument) (*ExpressionInfo, error) {
	if root == nil {
		return nil, errors.Wrap(ErrMalformedExpression, "empty expression")
	}
	info := &ExpressionInfo{
		id:            uuid.New(),
		namespace:     namespace,
		source:        source,
		root:          root,
		arguments:     append([]Argument(nil), args...),
		argumentIndex: make(map[string]int, len(args)),
		references:    make(map[string]*ExpressionInfo),
		dependencies:  make(map[string]struct{}),
		metrics:       r.metrics,
	}

	var result *multierror.Error
	for i, a := range args {
		if !isSimpleName(a.Name) {
			result = multierror.Append(result, errors.Wrapf(ErrInvalidArgument, "argument name %q", a.Name))
			continue
		}
		if _, ok := info.argumentIndex[a.Name]; ok {
			result = multierror.Append(result, errors.Wrapf(ErrInvalidArgument, "duplicate argument %q", a.Name))
			continue
		}
		info.argumentIndex[a.Name] = i
	}

	for _, ref := range pointcut.References(root) {
		target, err := r.Resolve(namespace, ref.Name())
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := checkReferenceArguments(info, ref, target); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		info.references[ref.Name()] = target
		info.dependencies[target.namespace] = struct{}{}
		for dep := range target.dependencies {
			info.dependencies[dep] = struct{}{}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	presence := walker{mode: modeCflowPresence, info: info}
	info.hasControlFlow = presence.eval(root) == True
	return info, nil
}

func checkReferenceArguments(info *ExpressionInfo, ref pointcut.ReferenceNode, target *ExpressionInfo) error {
	if ref.Arguments() == nil {
		return nil
	}
	if len(ref.Arguments()) != len(target.arguments) {
		return errors.Wrapf(ErrInvalidArgument, "%s: %s takes %d arguments", ref, target.source, len(target.arguments))
	}
	for _, name := range ref.Arguments() {
		if _, ok := info.argumentIndex[name]; !ok {
			return errors.Wrapf(ErrInvalidArgument, "%s: %q is not an argument of the enclosing pointcut", ref, name)
		}
	}
	return nil
}

func signature(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Namespace holds the named pointcuts of one defining scope. Names are
// defined once; reads never lock.
type Namespace struct {
	name        string
	registry    *Registry
	expressions sync.Map
}

func (n *Namespace) Name() string {
	return n.name
}

// Define parses source and registers it under name. Redefining a name with
// the same expression returns the existing bundle.
func (n *Namespace) Define(ctx context.Context, name, source string, args ...Argument) (*ExpressionInfo, error) {
	root, err := n.registry.parse(n.name, source)
	if err != nil {
		return nil, err
	}
	return n.define(ctx, name, source, root, args)
}

func (n *Namespace) DefineNode(ctx context.Context, name string, root pointcut.Node, args ...Argument) (*ExpressionInfo, error) {
	source := ""
	if root != nil {
		source = root.String()
	}
	return n.define(ctx, name, source, root, args)
}

func (n *Namespace) define(ctx context.Context, name, source string, root pointcut.Node, args []Argument) (*ExpressionInfo, error) {
	if !isSimpleName(name) {
		return nil, &DefinitionError{
			Namespace:  n.name,
			Expression: source,
			Err:        errors.Wrapf(ErrInvalidArgument, "pointcut name %q", name),
		}
	}
	info, err := n.registry.compile(ctx, n.name, source, root, args)
	if err != nil {
		return nil, err
	}
	existing, loaded := n.expressions.LoadOrStore(name, info)
	if !loaded {
		n.registry.logger.Debug("pointcut defined",
			slog.String("namespace", n.name),
			slog.String("name", name),
			slog.Bool("has_control_flow", info.hasControlFlow),
		)
		n.registry.defined.Notify(DefinedEvent{Namespace: n.name, Name: name, Info: info})
		return info, nil
	}
	prev := existing.(*ExpressionInfo)
	if prev.root.String() != info.root.String() || signature(prev.arguments) != signature(info.arguments) {
		return nil, &DefinitionError{
			Namespace:  n.name,
			Expression: source,
			Err:        errors.Wrapf(ErrDuplicateDefinition, "%q is already defined as %q", name, prev.source),
		}
	}
	return prev, nil
}

func (n *Namespace) Lookup(name string) (*ExpressionInfo, bool) {
	info, ok := n.expressions.Load(name)
	if !ok {
		return nil, false
	}
	return info.(*ExpressionInfo), true
}

func (n *Namespace) Names() []string {
	var names []string
	n.expressions.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}
