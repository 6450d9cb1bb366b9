package expression

import (
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

// PointcutType is the kind of join point a Context describes.
type PointcutType string

const (
	PointcutAny                  PointcutType = "any"
	PointcutExecution            PointcutType = "execution"
	PointcutCall                 PointcutType = "call"
	PointcutSet                  PointcutType = "set"
	PointcutGet                  PointcutType = "get"
	PointcutHandler              PointcutType = "handler"
	PointcutStaticInitialization PointcutType = "staticinitialization"
	PointcutWithin               PointcutType = "within"
)

// accepts reports whether a category-gated node may descend into its pattern.
func (t PointcutType) accepts(category pointcut.Category) bool {
	return t == PointcutAny || string(t) == string(category)
}

// Context describes one join point under evaluation: what kind of join point
// it is, the element it targets and the element it occurs within. A Context
// also carries the per-call bookkeeping of the evaluators, so it must not be
// shared between concurrent calls.
type Context struct {
	pointcutType PointcutType
	element      reflection.Element
	within       reflection.Element

	inCflowSubtree  bool
	hasVisitedCflow bool
	cflowResult     bool

	bindings Bindings
}

// NewContext creates a context. within may be nil when the enclosing element
// is unknown.
func NewContext(pointcutType PointcutType, element, within reflection.Element) *Context {
	return &Context{
		pointcutType: pointcutType,
		element:      element,
		within:       within,
	}
}

func (c *Context) PointcutType() PointcutType {
	return c.pointcutType
}

func (c *Context) Element() reflection.Element {
	return c.element
}

func (c *Context) Within() reflection.Element {
	return c.within
}

// InCflowSubtree reports whether evaluation is inside a cflow sub-expression.
func (c *Context) InCflowSubtree() bool {
	return c.inCflowSubtree
}

// SetInCflowSubtree marks the context as already inside a cflow subtree,
// for callers that evaluate a referenced pointcut on behalf of an enclosing
// cflow predicate.
func (c *Context) SetInCflowSubtree(in bool) {
	c.inCflowSubtree = in
}

func (c *Context) HasVisitedCflow() bool {
	return c.hasVisitedCflow
}

func (c *Context) CflowResult() bool {
	return c.cflowResult
}

// Bindings returns the argument positions recorded by the last MapArguments
// call on this context.
func (c *Context) Bindings() Bindings {
	return c.bindings
}

// Reset clears the per-call state so the context can describe the same join
// point again.
func (c *Context) Reset() {
	c.inCflowSubtree = false
	c.hasVisitedCflow = false
	c.cflowResult = false
	c.bindings = nil
}

// enclosingClass is the class whose members hasmethod/hasfield inspect.
func (c *Context) enclosingClass() reflection.ClassInfo {
	if c.within != nil {
		return reflection.DeclaringClass(c.within)
	}
	if c.element != nil {
		return reflection.DeclaringClass(c.element)
	}
	return nil
}

// parameterTypes are the actual arguments an args() predicate sees. For
// handler join points the caught exception type is the single argument.
// A field has one argument only when it is being set.
func (c *Context) parameterTypes() []reflection.ClassInfo {
	if c.element == nil {
		return nil
	}
	switch c.element.Kind() {
	case reflection.KindClass:
		if c.pointcutType != PointcutHandler {
			return nil
		}
		if class, ok := c.element.(reflection.ClassInfo); ok {
			return []reflection.ClassInfo{class}
		}
		return nil
	case reflection.KindField:
		if c.pointcutType != PointcutSet {
			return nil
		}
	}
	return reflection.ParameterTypes(c.element)
}
