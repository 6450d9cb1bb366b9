package expression

import (
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain/patterns"
)

// args matches an argument list against the parameters of the current join
// point. Items naming a signature argument use the argument's type. In
// modeArgs their positions are recorded, and only when the whole list
// matched.
func (w *walker) args(n pointcut.ArgsNode) bool {
	params := n.Parameters()
	declared := make([]patterns.TypePattern, len(params))
	bound := make([]string, len(params))
	for i, p := range params {
		declared[i] = p.TypePattern()
		if name, ok := w.boundName(p); ok {
			declared[i], _ = w.info.ArgumentType(name)
			bound[i] = name
		}
	}

	positions, ok := patterns.AlignParameters(declared, w.ctx.parameterTypes())
	if !ok || w.mode != modeArgs {
		return ok
	}
	for i, name := range bound {
		if name != "" {
			w.bindings[name] = positions[i]
		}
	}
	return true
}

func (w *walker) boundName(p pointcut.ArgParameterNode) (string, bool) {
	tp := p.TypePattern()
	if tp.IsEagerWildcard() || tp.IsHierarchical() {
		return "", false
	}
	name := tp.Pattern()
	if !isSimpleName(name) {
		return "", false
	}
	_, ok := w.info.argumentIndex[name]
	return name, ok
}
