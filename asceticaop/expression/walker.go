package expression

import (
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
)

type mode int

const (
	modeMatch mode = iota
	modeArgs
	modeClassFilter
	modeCflowPresence
	modeCflowStatic
	modeCflowStack
)

// walker evaluates one expression tree. A walker lives for a single call.
type walker struct {
	mode mode
	info *ExpressionInfo
	ctx  *Context

	// modeCflowStack
	local  *Context
	frames []*Context

	// modeArgs
	bindings Bindings
}

func (w *walker) eval(n pointcut.Node) Tri {
	switch node := n.(type) {
	case pointcut.InfixNode:
		if node.Operator() == pointcut.OperatorAnd {
			return w.and(node)
		}
		return w.or(node)

	case pointcut.PrefixNode:
		return w.not(node)

	case pointcut.PointcutNode:
		if node.Category().IsControlFlow() {
			return w.cflow(node)
		}
		return w.predicate(node)

	case pointcut.ReferenceNode:
		return w.reference(node)

	case pointcut.ArgsNode:
		switch {
		case w.mode == modeCflowPresence:
			return False
		case w.outsideCflow():
			return True
		case w.mode == modeClassFilter:
			return Undetermined
		}
		return FromBool(w.args(node))

	case pointcut.ClassPatternNode, pointcut.MethodPatternNode,
		pointcut.ConstructorPatternNode, pointcut.FieldPatternNode:
		switch {
		case w.mode == modeCflowPresence:
			return False
		case w.outsideCflow():
			return True
		case w.mode == modeClassFilter:
			return w.filterDeclaringType(node)
		}
		return FromBool(matchPattern(node, w.ctx.element))
	}
	return False
}

// outsideCflow is true while the static cflow matcher has not yet entered
// a cflow sub-expression. Ordinary predicates there are irrelevant.
func (w *walker) outsideCflow() bool {
	return w.mode == modeCflowStatic && !w.ctx.inCflowSubtree
}

func (w *walker) and(n pointcut.InfixNode) Tri {
	switch w.mode {
	case modeCflowPresence:
		return FromBool(w.eval(n.Left()) == True || w.eval(n.Right()) == True)
	case modeClassFilter:
		left := w.eval(n.Left())
		if left == False {
			return False
		}
		return left.And(w.eval(n.Right()))
	}
	if w.outsideCflow() {
		w.eval(n.Left())
		w.eval(n.Right())
		return False
	}
	if w.eval(n.Left()) != True {
		return False
	}
	return w.eval(n.Right())
}

func (w *walker) or(n pointcut.InfixNode) Tri {
	switch w.mode {
	case modeCflowPresence:
		return FromBool(w.eval(n.Left()) == True || w.eval(n.Right()) == True)
	case modeClassFilter:
		return w.eval(n.Left()).Or(w.eval(n.Right()))
	}
	if w.outsideCflow() {
		w.eval(n.Left())
		w.eval(n.Right())
		return False
	}
	if w.mode == modeArgs {
		saved := w.bindings.clone()
		if w.eval(n.Left()) == True {
			return True
		}
		w.bindings = saved
		return w.eval(n.Right())
	}
	if w.eval(n.Left()) == True {
		return True
	}
	return w.eval(n.Right())
}

func (w *walker) not(n pointcut.PrefixNode) Tri {
	operand := n.Operand()
	switch w.mode {
	case modeCflowPresence:
		return w.eval(operand)
	case modeClassFilter:
		if pointcut.IsControlFlow(operand) {
			return True
		}
		result := w.eval(operand)
		if result.IsDetermined() && w.containsHandler(operand) {
			// handler() is optimistically true at class level.
			return Undetermined
		}
		return result.Not()
	case modeCflowStack:
		return w.eval(operand).Not()
	}
	if w.outsideCflow() {
		w.eval(operand)
		return False
	}
	if pointcut.IsControlFlow(operand) {
		return w.eval(operand)
	}
	if w.mode == modeArgs {
		saved := w.bindings
		w.bindings = saved.clone()
		result := w.eval(operand)
		w.bindings = saved
		return result.Not()
	}
	return w.eval(operand).Not()
}

func (w *walker) reference(n pointcut.ReferenceNode) Tri {
	target := w.info.reference(n)
	if target == nil {
		return False
	}
	if w.mode == modeCflowPresence {
		return FromBool(target.hasControlFlow)
	}
	if w.mode == modeArgs {
		return w.referenceArgs(n, target)
	}
	outer := w.info
	w.info = target
	defer func() { w.info = outer }()
	return w.eval(target.root)
}

// referenceArgs evaluates the referenced pointcut with its own bindings and
// translates them to the local names passed at the call site.
func (w *walker) referenceArgs(n pointcut.ReferenceNode, target *ExpressionInfo) Tri {
	outerInfo, outerBindings := w.info, w.bindings
	w.info, w.bindings = target, Bindings{}
	result := w.eval(target.root)
	inner := w.bindings
	w.info, w.bindings = outerInfo, outerBindings
	if result != True {
		return result
	}
	for i, local := range n.Arguments() {
		if pos, ok := inner[target.ArgumentNameAt(i)]; ok {
			w.bindings[local] = pos
		}
	}
	return True
}

func (w *walker) containsHandler(n pointcut.Node) bool {
	found := false
	pointcut.Walk(n, func(node pointcut.Node) bool {
		if found {
			return false
		}
		switch child := node.(type) {
		case pointcut.PointcutNode:
			if child.Category() == pointcut.CategoryHandler {
				found = true
			}
		case pointcut.ReferenceNode:
			if target := w.info.reference(child); target != nil {
				outer := w.info
				w.info = target
				found = w.containsHandler(target.root)
				w.info = outer
			}
		}
		return !found
	})
	return found
}
