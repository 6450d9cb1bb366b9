package expression

import (
	pointcut "github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain/patterns"
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

func (w *walker) predicate(n pointcut.PointcutNode) Tri {
	switch {
	case w.mode == modeCflowPresence:
		return False
	case w.outsideCflow():
		return True
	case w.mode == modeClassFilter:
		return w.filterPredicate(n)
	}

	ctx := w.ctx
	switch n.Category() {
	case pointcut.CategoryWithin:
		if ctx.within == nil {
			return False
		}
		return FromBool(matchPattern(n.Pattern(), reflection.DeclaringClass(ctx.within)))
	case pointcut.CategoryWithinCode:
		return FromBool(matchPattern(n.Pattern(), ctx.within))
	case pointcut.CategoryHasMethod, pointcut.CategoryHasField:
		return FromBool(hasMember(n, ctx.enclosingClass()))
	}
	if !ctx.pointcutType.accepts(n.Category()) {
		return False
	}
	return w.eval(n.Pattern())
}

// filterPredicate is the class-level approximation of a predicate.
func (w *walker) filterPredicate(n pointcut.PointcutNode) Tri {
	ctx := w.ctx
	switch n.Category() {
	case pointcut.CategoryHandler:
		return True
	case pointcut.CategoryWithin:
		if ctx.within == nil {
			return Undetermined
		}
		return FromBool(matchPattern(n.Pattern(), reflection.DeclaringClass(ctx.within)))
	case pointcut.CategoryWithinCode:
		if ctx.within == nil {
			return Undetermined
		}
		if ctx.within.Kind() == reflection.KindClass {
			return filterDeclaringType(n.Pattern(), reflection.DeclaringClass(ctx.within))
		}
		return FromBool(matchPattern(n.Pattern(), ctx.within))
	case pointcut.CategoryHasMethod, pointcut.CategoryHasField:
		class := ctx.enclosingClass()
		if class == nil {
			return Undetermined
		}
		return FromBool(hasMember(n, class))
	}
	if !ctx.pointcutType.accepts(n.Category()) {
		return False
	}
	return w.eval(n.Pattern())
}

func (w *walker) filterDeclaringType(n pointcut.Node) Tri {
	if w.ctx.element == nil {
		return Undetermined
	}
	return filterDeclaringType(n, reflection.DeclaringClass(w.ctx.element))
}

// filterDeclaringType checks only the declaring-type part of a pattern. A
// positive answer says nothing about the members, hence Undetermined.
func filterDeclaringType(n pointcut.Node, class reflection.ClassInfo) Tri {
	if class == nil {
		return Undetermined
	}
	var declaring patterns.TypePattern
	switch p := n.(type) {
	case pointcut.ClassPatternNode:
		declaring = p.Signature().Type
	case pointcut.MethodPatternNode:
		declaring = p.Signature().DeclaringType
	case pointcut.ConstructorPatternNode:
		declaring = p.Signature().DeclaringType
	case pointcut.FieldPatternNode:
		declaring = p.Signature().DeclaringType
	default:
		return Undetermined
	}
	if !declaring.Matches(class) {
		return False
	}
	return Undetermined
}

func hasMember(n pointcut.PointcutNode, class reflection.ClassInfo) bool {
	if class == nil {
		return false
	}
	if n.Category() == pointcut.CategoryHasField {
		for _, f := range reflection.AllFields(class) {
			if matchPattern(n.Pattern(), f) {
				return true
			}
		}
		return false
	}
	if _, ok := n.Pattern().(pointcut.ConstructorPatternNode); ok {
		for _, c := range class.Constructors() {
			if matchPattern(n.Pattern(), c) {
				return true
			}
		}
		return false
	}
	for _, m := range reflection.AllMethods(class) {
		if matchPattern(n.Pattern(), m) {
			return true
		}
	}
	return false
}

func matchPattern(n pointcut.Node, e reflection.Element) bool {
	if e == nil {
		return false
	}
	switch p := n.(type) {
	case pointcut.ClassPatternNode:
		class, ok := e.(reflection.ClassInfo)
		return ok && e.Kind() == reflection.KindClass && matchClass(p.Signature(), class)
	case pointcut.MethodPatternNode:
		method, ok := e.(reflection.MethodInfo)
		return ok && e.Kind() == reflection.KindMethod && matchMethod(p.Signature(), method)
	case pointcut.ConstructorPatternNode:
		ctor, ok := e.(reflection.ConstructorInfo)
		return ok && e.Kind() == reflection.KindConstructor && matchConstructor(p.Signature(), ctor)
	case pointcut.FieldPatternNode:
		field, ok := e.(reflection.FieldInfo)
		return ok && e.Kind() == reflection.KindField && matchField(p.Signature(), field)
	}
	return false
}

func matchClass(sig patterns.ClassSignature, class reflection.ClassInfo) bool {
	return sig.Type.Matches(class) &&
		sig.Modifiers.Matches(class.Modifiers()) &&
		patterns.MatchAttributes(sig.Attributes, class)
}

func matchMethod(sig patterns.MethodSignature, method reflection.MethodInfo) bool {
	return sig.Name.Matches(method.Name()) &&
		sig.DeclaringType.Matches(method.DeclaringType()) &&
		matchReturnType(sig.ReturnType, method.ReturnType()) &&
		sig.Modifiers.Matches(method.Modifiers()) &&
		patterns.MatchAttributes(sig.Attributes, method) &&
		patterns.MatchParameters(sig.Parameters, method.ParameterTypes())
}

func matchConstructor(sig patterns.ConstructorSignature, ctor reflection.ConstructorInfo) bool {
	return sig.DeclaringType.Matches(ctor.DeclaringType()) &&
		sig.Modifiers.Matches(ctor.Modifiers()) &&
		patterns.MatchAttributes(sig.Attributes, ctor) &&
		patterns.MatchParameters(sig.Parameters, ctor.ParameterTypes())
}

func matchField(sig patterns.FieldSignature, field reflection.FieldInfo) bool {
	return sig.Name.Matches(field.Name()) &&
		sig.DeclaringType.Matches(field.DeclaringType()) &&
		sig.Type.Matches(field.Type()) &&
		sig.Modifiers.Matches(field.Modifiers()) &&
		patterns.MatchAttributes(sig.Attributes, field)
}

// A nil return type is void.
func matchReturnType(p patterns.TypePattern, returnType reflection.ClassInfo) bool {
	if returnType == nil {
		return p.MatchesName(patterns.VoidTypeName)
	}
	return p.Matches(returnType)
}
