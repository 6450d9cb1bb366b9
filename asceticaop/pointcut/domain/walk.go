package pointcut

// Walk traverses the tree in pre-order. Children of a node are skipped when
// fn returns false for it. References are not followed.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch node := n.(type) {
	case InfixNode:
		Walk(node.Left(), fn)
		Walk(node.Right(), fn)
	case PrefixNode:
		Walk(node.Operand(), fn)
	case PointcutNode:
		Walk(node.Pattern(), fn)
	case ArgsNode:
		for _, p := range node.Parameters() {
			Walk(p, fn)
		}
	}
}

// References returns the reference nodes of the tree in visiting order.
func References(n Node) []ReferenceNode {
	var result []ReferenceNode
	Walk(n, func(node Node) bool {
		if ref, ok := node.(ReferenceNode); ok {
			result = append(result, ref)
		}
		return true
	})
	return result
}

// IsControlFlow reports whether the node is a cflow or cflowbelow predicate.
func IsControlFlow(n Node) bool {
	p, ok := n.(PointcutNode)
	return ok && p.Category().IsControlFlow()
}
