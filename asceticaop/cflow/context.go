package cflow

import (
	"context"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/expression"
)

type stackKey struct{}

func WithStack(ctx context.Context, s *Stack) context.Context {
	return context.WithValue(ctx, stackKey{}, s)
}

func FromContext(ctx context.Context) (*Stack, bool) {
	s, ok := ctx.Value(stackKey{}).(*Stack)
	return s, ok
}

// Enter pushes the join point on the stack carried by ctx. A new stack is
// attached when ctx has none; the returned context must then be passed on.
func Enter(ctx context.Context, jp *expression.Context) (context.Context, func(), error) {
	s, ok := FromContext(ctx)
	if !ok {
		s = NewStack()
		ctx = WithStack(ctx, s)
	}
	release, err := s.Enter(jp)
	return ctx, release, err
}

// Run executes fn inside the control flow of the join point. The frame is
// popped however fn returns, panics included.
func Run(ctx context.Context, jp *expression.Context, fn func(context.Context) error) error {
	ctx, release, err := Enter(ctx, jp)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// Match evaluates the expression against the control flow carried by ctx.
// Without a stack there are no frames.
func Match(ctx context.Context, info *expression.ExpressionInfo, local *expression.Context) bool {
	if s, ok := FromContext(ctx); ok {
		return s.Match(info, local)
	}
	return info.MatchCflowStack(nil, local)
}
