package expression

import (
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
)

func (w *walker) cflow(n pointcut.PointcutNode) Tri {
	switch w.mode {
	case modeCflowPresence, modeMatch, modeArgs:
		return True
	case modeClassFilter:
		return Undetermined
	case modeCflowStatic:
		return w.cflowStatic(n)
	}
	return w.cflowStack(n)
}

func (w *walker) cflowStatic(n pointcut.PointcutNode) Tri {
	ctx := w.ctx
	outer := ctx.inCflowSubtree
	ctx.inCflowSubtree = true
	result := w.eval(n.Pattern()) == True
	ctx.inCflowSubtree = outer

	ctx.cflowResult = ctx.cflowResult || result
	ctx.hasVisitedCflow = true
	return FromBool(result)
}

// cflowStack looks for a frame, newest first, that matches the
// sub-expression. cflowbelow ignores the frame of the local join point.
func (w *walker) cflowStack(n pointcut.PointcutNode) Tri {
	selected := w.ctx
	defer func() { w.ctx = selected }()

	below := n.Category() == pointcut.CategoryCflowBelow
	for i := len(w.frames) - 1; i >= 0; i-- {
		frame := w.frames[i]
		if frame == nil || below && frame == w.local {
			continue
		}
		w.ctx = frame
		if w.eval(n.Pattern()) == True {
			return True
		}
	}
	return False
}
