package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

func TestFilterClass_PrunesByDeclaringType(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, execution("* com.acme.shop.*.*(..)"))

	assert.False(t, info.FilterClass(NewContext(PointcutExecution, s.invoice, s.invoice)))
	assert.True(t, info.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
}

func TestFilterClass_PositiveTypeMatchIsUndetermined(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, execution("* com.acme.shop.OrderService.doesNotExist(..)"))
	w := walker{mode: modeClassFilter, info: info, ctx: NewContext(PointcutExecution, s.orders, s.orders)}

	assert.Equal(t, Undetermined, w.eval(info.Root()))
	assert.True(t, info.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
}

func TestFilterClass_CategoryMismatch(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, call("* com.acme.shop.*.*(..)"))

	assert.False(t, info.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
	assert.True(t, info.FilterClass(NewContext(PointcutCall, s.orders, s.orders)))
	assert.True(t, info.FilterClass(NewContext(PointcutAny, s.orders, s.orders)))
}

func TestFilterClass_HandlerIsAlwaysTrue(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	handler := pointcut.Handler(pointcut.MustClassPattern("java.io.IOException+"))

	assert.True(t, compile(t, r, handler).FilterClass(NewContext(PointcutExecution, s.invoice, s.invoice)))
	assert.True(t, compile(t, r, pointcut.Not(handler)).FilterClass(NewContext(PointcutHandler, s.invoice, s.invoice)))
}

func TestFilterClass_Not(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	notShop := compile(t, r, pointcut.Not(within("com.acme.shop.*")))
	notPlace := compile(t, r, pointcut.Not(execution("* com.acme.shop.*.place(..)")))
	notCflow := compile(t, r, pointcut.Not(pointcut.Cflow(execution("* *.*(..)"))))

	assert.False(t, notShop.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
	assert.True(t, notShop.FilterClass(NewContext(PointcutExecution, s.invoice, s.invoice)))
	assert.True(t, notPlace.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
	assert.True(t, notPlace.FilterClass(NewContext(PointcutExecution, s.invoice, s.invoice)))
	assert.True(t, notCflow.FilterClass(NewContext(PointcutExecution, s.invoice, s.invoice)))
}

func TestFilterClass_OrIsOnlyDeterminedWhenBothSidesAre(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.Or(within("com.acme.billing.*"), execution("* com.acme.shop.*.*(..)")))
	ctx := NewContext(PointcutExecution, s.orders, s.orders)
	w := walker{mode: modeClassFilter, info: info, ctx: ctx}

	assert.Equal(t, Undetermined, w.eval(info.Root()))
	assert.True(t, info.FilterClass(ctx))
}

func TestFilterClass_AndIsFalseWhenEitherSideIs(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, pointcut.And(execution("* com.acme.shop.*.*(..)"), within("com.acme.billing.*")))

	assert.False(t, info.FilterClass(NewContext(PointcutExecution, s.orders, s.orders)))
}

func TestFilterClass_UnknownWithinFailsOpen(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	info := compile(t, r, within("com.acme.billing.*"))

	assert.True(t, info.FilterClass(NewContext(PointcutCall, s.orders, nil)))
}

func TestFilterClass_IsSound(t *testing.T) {
	s := newShop()
	r := newTestRegistry()
	define(t, r, "Shop", "placing", execution("* *.place(..)"))
	expressions := []pointcut.Node{
		execution("* *.place(..)"),
		execution("* com.acme.billing.*.*(..)"),
		call("* com.acme.shop.Service+.*(..)"),
		pointcut.Set(pointcut.MustFieldPattern("* *.total")),
		pointcut.Get(pointcut.MustFieldPattern("long com.acme..*.*")),
		pointcut.Execution(pointcut.MustConstructorPattern("com.acme.shop.*.new(..)")),
		within("com.acme.shop.*"),
		pointcut.Not(within("com.acme.shop.*")),
		pointcut.Not(execution("* *.place(..)")),
		pointcut.Not(pointcut.Handler(pointcut.MustClassPattern("*"))),
		pointcut.Not(pointcut.And(pointcut.Handler(pointcut.MustClassPattern("*")), within("*"))),
		pointcut.WithinCode(pointcut.MustMethodPattern("* *.place(..)")),
		pointcut.HasMethod(pointcut.MustMethodPattern("* audit(..)")),
		pointcut.And(execution("* *.*(..)"), pointcut.Not(pointcut.HasField(pointcut.MustFieldPattern("long *")))),
		pointcut.Or(pointcut.Cflow(call("* *.*(..)")), pointcut.Not(execution("* *.cancel(..)"))),
		pointcut.And(pointcut.MustReference("Shop.placing"), pointcut.MustArgs("..", "int")),
		pointcut.Not(pointcut.MustReference("Shop.placing")),
	}
	classes := []*reflection.Class{s.orders, s.invoice}
	types := []PointcutType{PointcutExecution, PointcutCall, PointcutSet, PointcutGet, PointcutAny}

	for _, e := range expressions {
		info := compile(t, r, e)
		for _, class := range classes {
			for _, pt := range types {
				if info.FilterClass(NewContext(pt, class, class)) {
					continue
				}
				for _, member := range members(class) {
					assert.False(t, info.Match(NewContext(pt, member, class)),
						"%s pruned %s but matches %s", e, class.Name(), member)
				}
			}
		}
	}
}

func members(class *reflection.Class) []reflection.Element {
	var result []reflection.Element
	for _, m := range class.Methods() {
		result = append(result, m)
	}
	for _, f := range class.Fields() {
		result = append(result, f)
	}
	for _, c := range class.Constructors() {
		result = append(result, c)
	}
	return result
}
