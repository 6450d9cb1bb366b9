package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

// --- Categories ---

func TestMatch_Execution(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, execution("* com.acme.shop.OrderService.place(..)"))

	assert.True(t, info.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, info.Match(NewContext(PointcutAny, s.place, nil)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.place, nil)))
	assert.False(t, info.Match(NewContext(PointcutExecution, s.cancel, nil)))
	assert.False(t, info.Match(NewContext(PointcutExecution, s.total, nil)))
}

func TestMatch_CallAndSetNeverBothApply(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	callPlace := call("* *.place(..)")
	setTotal := pointcut.Set(pointcut.MustFieldPattern("int *.total"))

	ctx := NewContext(PointcutCall, s.place, s.invoice)
	assert.True(t, compile(t, r, callPlace).Match(ctx))
	assert.False(t, compile(t, r, setTotal).Match(ctx))
	assert.False(t, compile(t, r, pointcut.And(callPlace, setTotal)).Match(ctx))
	assert.True(t, compile(t, r, pointcut.Or(callPlace, setTotal)).Match(ctx))
}

func TestMatch_FieldAccess(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	set := compile(t, r, pointcut.Set(pointcut.MustFieldPattern("int com.acme.shop.OrderService.total")))
	get := compile(t, r, pointcut.Get(pointcut.MustFieldPattern("* *.amount")))

	assert.True(t, set.Match(NewContext(PointcutSet, s.total, nil)))
	assert.False(t, set.Match(NewContext(PointcutGet, s.total, nil)))
	assert.False(t, set.Match(NewContext(PointcutSet, s.amount, nil)))
	assert.True(t, get.Match(NewContext(PointcutGet, s.amount, nil)))
}

func TestMatch_Constructor(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.Execution(pointcut.MustConstructorPattern("com.acme.shop.*.new(java.lang.String)")))

	assert.True(t, info.Match(NewContext(PointcutExecution, s.ctor, nil)))
	assert.False(t, info.Match(NewContext(PointcutExecution, s.cancel, nil)))
}

func TestMatch_Handler(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.Handler(pointcut.MustClassPattern("java.io.IOException+")))

	assert.True(t, info.Match(NewContext(PointcutHandler, s.fileNotFound, s.place)))
	assert.True(t, info.Match(NewContext(PointcutHandler, s.ioException, s.place)))
	assert.False(t, info.Match(NewContext(PointcutHandler, s.str, s.place)))
	assert.False(t, info.Match(NewContext(PointcutExecution, s.fileNotFound, s.place)))
}

func TestMatch_StaticInitialization(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.StaticInitialization(pointcut.MustClassPattern("@Transactional com.acme..*")))

	assert.True(t, info.Match(NewContext(PointcutStaticInitialization, s.orders, nil)))
	assert.False(t, info.Match(NewContext(PointcutStaticInitialization, s.invoice, nil)))
}

// --- Signatures ---

func TestMatch_ReturnType(t *testing.T) {
	s := newShop()
	r := newTestRegistry()

	assert.True(t, compile(t, r, execution("void *.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
	assert.False(t, compile(t, r, execution("boolean *.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, compile(t, r, execution("boolean *.cancel(..)")).Match(NewContext(PointcutExecution, s.cancel, nil)))
	assert.False(t, compile(t, r, execution("void *.cancel(..)")).Match(NewContext(PointcutExecution, s.cancel, nil)))
}

func TestMatch_ModifiersAndAttributes(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	audited := compile(t, r, execution("@Audited private static * *.*(..)"))
	notStatic := compile(t, r, execution("!static * com.acme.shop.OrderService.*(..)"))
	notAudited := compile(t, r, execution("!@Audited * com.acme.shop.OrderService.*(..)"))

	assert.True(t, audited.Match(NewContext(PointcutExecution, s.audit, nil)))
	assert.False(t, audited.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, notStatic.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.False(t, notStatic.Match(NewContext(PointcutExecution, s.audit, nil)))
	assert.True(t, notAudited.Match(NewContext(PointcutExecution, s.cancel, nil)))
	assert.False(t, notAudited.Match(NewContext(PointcutExecution, s.audit, nil)))
}

func TestMatch_Parameters(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	cases := []struct {
		pattern string
		method  reflection.Element
		want    bool
	}{
		{"* *.*(..)", s.audit, true},
		{"* *.*(..)", s.pay, true},
		{"* *.*()", s.pay, true},
		{"* *.*()", s.place, false},
		{"* *.place(com.acme.shop.Order, int)", s.place, true},
		{"* *.place(int, com.acme.shop.Order)", s.place, false},
		{"* *.place(com.acme.shop.Order)", s.place, false},
		{"* *.audit(.., long)", s.audit, true},
		{"* *.audit(java.lang.String, ..)", s.audit, true},
		{"* *.audit(.., int, ..)", s.audit, true},
		{"* *.audit(.., boolean, ..)", s.audit, false},
		{"* *.audit(java.lang.*, int, long)", s.audit, true},
		{"* *.audit(java.lang.Object+, ..)", s.audit, true},
		{"* *.audit(java.lang.Object, ..)", s.audit, false},
		{"* *.audit(.., java.lang.String, int, long)", s.audit, true},
		{"* *.audit(.., int, java.lang.String, int, long)", s.audit, false},
		{"* *.place(com.acme.shop.Order, .., int)", s.place, true},
		{"* *.audit(java.lang.String, .., long)", s.audit, true},
		{"* *.audit(java.lang.String, .., int)", s.audit, false},
	}
	for _, c := range cases {
		info := compile(t, r, execution(c.pattern))
		assert.Equal(t, c.want, info.Match(NewContext(PointcutExecution, c.method, nil)), c.pattern)
	}
}

func TestMatch_HierarchicalDeclaringType(t *testing.T) {
	s := newShop()
	r := newTestRegistry()

	assert.True(t, compile(t, r, execution("* com.acme.shop.Service+.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
	assert.False(t, compile(t, r, execution("* com.acme.shop.Service.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, compile(t, r, execution("* com..*.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
	assert.False(t, compile(t, r, execution("* com.*.place(..)")).Match(NewContext(PointcutExecution, s.place, nil)))
}

// --- Enclosing element ---

func TestMatch_Within(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.And(call("* *.pay()"), within("com.acme.shop.*")))

	assert.True(t, info.Match(NewContext(PointcutCall, s.pay, s.place)))
	assert.True(t, info.Match(NewContext(PointcutCall, s.pay, s.orders)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.pay, s.amount)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.pay, nil)))
}

func TestMatch_WithinCode(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.And(
		call("* com.acme.billing.Invoice.pay()"),
		pointcut.WithinCode(pointcut.MustMethodPattern("* *.place(..)")),
	))

	assert.True(t, info.Match(NewContext(PointcutCall, s.pay, s.place)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.pay, s.cancel)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.pay, s.orders)))
	assert.False(t, info.Match(NewContext(PointcutCall, s.pay, nil)))
}

func TestMatch_HasMethodAndHasField(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	hasAudit := compile(t, r, pointcut.HasMethod(pointcut.MustMethodPattern("* audit(..)")))
	hasToString := compile(t, r, pointcut.HasMethod(pointcut.MustMethodPattern("* toString()")))
	hasTotal := compile(t, r, pointcut.HasField(pointcut.MustFieldPattern("int total")))
	hasCtor := compile(t, r, pointcut.HasMethod(pointcut.MustConstructorPattern("new(java.lang.String)")))

	assert.True(t, hasAudit.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, hasAudit.Match(NewContext(PointcutCall, s.pay, s.place)))
	assert.False(t, hasAudit.Match(NewContext(PointcutExecution, s.pay, nil)))
	assert.False(t, hasToString.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, hasTotal.Match(NewContext(PointcutAny, s.orders, nil)))
	assert.False(t, hasTotal.Match(NewContext(PointcutAny, s.invoice, nil)))
	assert.True(t, hasCtor.Match(NewContext(PointcutAny, s.orders, nil)))
}

func TestMatch_HasMethodSeesInheritedMethods(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	s.object.AddMethod("toString", reflection.WithModifiers(reflection.Public), reflection.WithReturnType(s.str))
	info := compile(t, r, pointcut.HasMethod(pointcut.MustMethodPattern("java.lang.String toString()")))

	assert.True(t, info.Match(NewContext(PointcutAny, s.orders, nil)))
}

// --- Logic ---

func TestMatch_NotDoesNotInvertControlFlow(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	notCflow := compile(t, r, pointcut.Not(pointcut.Cflow(call("* *.cancel(..)"))))
	cflowAndPlace := compile(t, r, pointcut.And(execution("* *.place(..)"), pointcut.Not(pointcut.CflowBelow(call("* *.*(..)")))))

	assert.True(t, notCflow.Match(NewContext(PointcutExecution, s.place, nil)))
	assert.True(t, cflowAndPlace.Match(NewContext(PointcutExecution, s.place, nil)))
}

func TestMatch_Idempotence(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	expressions := []pointcut.Node{
		execution("* *.place(..)"),
		pointcut.Or(call("* *.pay()"), within("com.acme.billing.*")),
		pointcut.Not(pointcut.Set(pointcut.MustFieldPattern("* *.*"))),
		pointcut.HasField(pointcut.MustFieldPattern("long amount")),
	}
	contexts := joinPoints(s)

	for _, e := range expressions {
		plain := compile(t, r, e)
		and := compile(t, r, pointcut.And(e, e))
		or := compile(t, r, pointcut.Or(e, e))
		for _, ctx := range contexts {
			assert.Equal(t, plain.Match(ctx), and.Match(ctx), e.String())
			assert.Equal(t, plain.Match(ctx), or.Match(ctx), e.String())
		}
	}
}

func TestMatch_DoubleNegation(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	expressions := []pointcut.Node{
		execution("* *.place(..)"),
		pointcut.And(call("* *.pay()"), within("com.acme.shop.*")),
		pointcut.Or(pointcut.Get(pointcut.MustFieldPattern("* *.*")), execution("!static * *.*(..)")),
		pointcut.And(execution("* *.*(..)"), pointcut.Cflow(call("* *.cancel(..)"))),
	}
	contexts := joinPoints(s)

	for _, e := range expressions {
		plain := compile(t, r, e)
		double := compile(t, r, pointcut.Not(pointcut.Not(e)))
		for _, ctx := range contexts {
			assert.Equal(t, plain.Match(ctx), double.Match(ctx), e.String())
		}
	}
}

func TestMatch_Reference(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	define(t, r, "Shop", "placing", execution("* *.place(..)"))
	local := compile(t, r, pointcut.And(pointcut.MustReference("Shop.placing"), within("com.acme.shop.*")))

	assert.True(t, local.Match(NewContext(PointcutExecution, s.place, s.orders)))
	assert.False(t, local.Match(NewContext(PointcutExecution, s.cancel, s.orders)))
}

func joinPoints(s *shop) []*Context {
	var result []*Context
	types := []PointcutType{PointcutExecution, PointcutCall, PointcutSet, PointcutGet, PointcutAny}
	elements := []reflection.Element{s.place, s.cancel, s.audit, s.total, s.ctor, s.pay, s.amount}
	withins := []reflection.Element{nil, s.orders, s.place, s.invoice}
	for _, pt := range types {
		for _, e := range elements {
			for _, w := range withins {
				result = append(result, NewContext(pt, e, w))
			}
		}
	}
	return result
}
