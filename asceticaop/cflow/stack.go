package cflow

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/config"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/expression"
)

var ErrStackOverflow = errors.New("control flow stack depth exceeded")

var overflowsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pointcut",
	Subsystem: "cflow",
	Name:      "overflows_total",
	Help:      "Total join point entries rejected by the control flow depth limit",
})

type Option func(*Stack)

// WithMaxDepth limits the number of frames. Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(s *Stack) {
		s.maxDepth = depth
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Stack) {
		s.maxDepth = cfg.Cflow.MaxDepth
	}
}

// Stack is the control flow of one goroutine: the join points it is
// currently inside, innermost last. It must not be shared between
// goroutines.
type Stack struct {
	frames   []*expression.Context
	maxDepth int
}

func NewStack(opts ...Option) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enter pushes a frame for the join point. The returned release pops it and
// must be deferred by the caller. Releasing an outer frame also drops frames
// that were entered after it and never released.
func (s *Stack) Enter(jp *expression.Context) (release func(), err error) {
	if s.maxDepth > 0 && len(s.frames) >= s.maxDepth {
		overflowsTotal.Inc()
		return func() {}, errors.Wrapf(ErrStackOverflow, "depth %d", s.maxDepth)
	}
	depth := len(s.frames)
	s.frames = append(s.frames, jp)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if depth < len(s.frames) && s.frames[depth] == jp {
			clear(s.frames[depth:])
			s.frames = s.frames[:depth]
		}
	}, nil
}

// Frames returns a copy of the frames, oldest first.
func (s *Stack) Frames() []*expression.Context {
	return append([]*expression.Context(nil), s.frames...)
}

func (s *Stack) Depth() int {
	return len(s.frames)
}

// Match evaluates the expression against the current frames.
func (s *Stack) Match(info *expression.ExpressionInfo, local *expression.Context) bool {
	return info.MatchCflowStack(s.frames, local)
}
