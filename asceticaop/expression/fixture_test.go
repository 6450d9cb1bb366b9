package expression

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

// shop is a small class model:
//
//	com.acme.shop.Service (interface)
//	com.acme.shop.OrderService implements Service
//	  public void place(Order, int)
//	  public boolean cancel(String)
//	  @Audited private static void audit(String, int, long)
//	  private int total
//	  public OrderService(String)
//	com.acme.billing.Invoice
//	  public void pay()
//	  private long amount
type shop struct {
	object       *reflection.Class
	str          *reflection.Class
	integer      *reflection.Class
	long         *reflection.Class
	boolean      *reflection.Class
	ioException  *reflection.Class
	fileNotFound *reflection.Class

	order   *reflection.Class
	service *reflection.Class
	orders  *reflection.Class
	place   *reflection.Method
	cancel  *reflection.Method
	audit   *reflection.Method
	total   *reflection.Field
	ctor    *reflection.Constructor

	invoice *reflection.Class
	pay     *reflection.Method
	amount  *reflection.Field
}

func newShop() *shop {
	s := &shop{}
	s.object = reflection.NewClass("java.lang.Object")
	s.str = reflection.NewClass("java.lang.String", reflection.WithSuperClass(s.object))
	s.integer = reflection.NewClass("int")
	s.long = reflection.NewClass("long")
	s.boolean = reflection.NewClass("boolean")
	s.ioException = reflection.NewClass("java.io.IOException", reflection.WithSuperClass(s.object))
	s.fileNotFound = reflection.NewClass("java.io.FileNotFoundException", reflection.WithSuperClass(s.ioException))

	s.order = reflection.NewClass("com.acme.shop.Order", reflection.WithSuperClass(s.object))
	s.service = reflection.NewClass("com.acme.shop.Service", reflection.WithClassModifiers(reflection.Public|reflection.Abstract))
	s.orders = reflection.NewClass("com.acme.shop.OrderService",
		reflection.WithSuperClass(s.object),
		reflection.WithInterfaces(s.service),
		reflection.WithClassModifiers(reflection.Public),
		reflection.WithClassAnnotations("Transactional"),
	)
	s.place = s.orders.AddMethod("place",
		reflection.WithModifiers(reflection.Public),
		reflection.WithParameters(s.order, s.integer),
	)
	s.cancel = s.orders.AddMethod("cancel",
		reflection.WithModifiers(reflection.Public),
		reflection.WithParameters(s.str),
		reflection.WithReturnType(s.boolean),
	)
	s.audit = s.orders.AddMethod("audit",
		reflection.WithModifiers(reflection.Private|reflection.Static),
		reflection.WithAnnotations("Audited"),
		reflection.WithParameters(s.str, s.integer, s.long),
	)
	s.total = s.orders.AddField("total", s.integer, reflection.WithModifiers(reflection.Private))
	s.ctor = s.orders.AddConstructor(reflection.WithModifiers(reflection.Public), reflection.WithParameters(s.str))

	s.invoice = reflection.NewClass("com.acme.billing.Invoice", reflection.WithSuperClass(s.object))
	s.pay = s.invoice.AddMethod("pay", reflection.WithModifiers(reflection.Public))
	s.amount = s.invoice.AddField("amount", s.long, reflection.WithModifiers(reflection.Private))
	return s
}

func newTestRegistry(opts ...Option) *Registry {
	base := []Option{
		WithMetrics(false),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewRegistry(append(base, opts...)...)
}

func compile(t *testing.T, r *Registry, root pointcut.Node, args ...Argument) *ExpressionInfo {
	t.Helper()
	info, err := r.Compile(context.Background(), "test", root, args...)
	require.NoError(t, err)
	return info
}

func define(t *testing.T, r *Registry, namespace, name string, root pointcut.Node, args ...Argument) *ExpressionInfo {
	t.Helper()
	info, err := r.Namespace(namespace).DefineNode(context.Background(), name, root, args...)
	require.NoError(t, err)
	return info
}

func execution(text string) pointcut.PointcutNode {
	return pointcut.Execution(pointcut.MustMethodPattern(text))
}

func call(text string) pointcut.PointcutNode {
	return pointcut.Call(pointcut.MustMethodPattern(text))
}

func within(text string) pointcut.PointcutNode {
	return pointcut.Within(pointcut.MustClassPattern(text))
}
