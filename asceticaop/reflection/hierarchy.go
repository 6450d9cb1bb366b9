package reflection

// IsSubtypeOf reports whether the class itself, or any of its superclasses or
// interfaces (transitively), satisfies the predicate.
func IsSubtypeOf(class ClassInfo, predicate func(ClassInfo) bool) bool {
	found := false
	walkHierarchy(class, func(c ClassInfo) bool {
		if predicate(c) {
			found = true
			return false
		}
		return true
	})
	return found
}

// AllMethods returns the methods declared by the class and inherited from its
// superclasses and interfaces, nearest declarations first.
func AllMethods(class ClassInfo) []MethodInfo {
	var result []MethodInfo
	walkHierarchy(class, func(c ClassInfo) bool {
		result = append(result, c.Methods()...)
		return true
	})
	return result
}

// AllFields returns the fields declared by the class and its supertypes.
func AllFields(class ClassInfo) []FieldInfo {
	var result []FieldInfo
	walkHierarchy(class, func(c ClassInfo) bool {
		result = append(result, c.Fields()...)
		return true
	})
	return result
}

// ParameterTypes returns the ordered parameter types of a method or
// constructor, the field type of a field as a single parameter (the value
// written by a set join point), and nil for anything else.
func ParameterTypes(e Element) []ClassInfo {
	switch e.Kind() {
	case KindMethod:
		if m, ok := e.(MethodInfo); ok {
			return m.ParameterTypes()
		}
	case KindConstructor:
		if c, ok := e.(ConstructorInfo); ok {
			return c.ParameterTypes()
		}
	case KindField:
		if f, ok := e.(FieldInfo); ok && f.Type() != nil {
			return []ClassInfo{f.Type()}
		}
	}
	return nil
}

// DeclaringClass returns the class itself for a ClassInfo, or the declaring
// type of a member.
func DeclaringClass(e Element) ClassInfo {
	switch info := e.(type) {
	case ClassInfo:
		return info
	case MemberInfo:
		return info.DeclaringType()
	}
	return nil
}

// HasAnnotation performs the linear name scan used by attribute patterns.
func HasAnnotation(e Element, name string) bool {
	for _, a := range e.Annotations() {
		if a == name {
			return true
		}
	}
	return false
}

func walkHierarchy(class ClassInfo, fn func(ClassInfo) bool) {
	if class == nil {
		return
	}
	visited := make(map[string]bool)
	queue := []ClassInfo{class}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil || visited[c.Name()] {
			continue
		}
		visited[c.Name()] = true
		if !fn(c) {
			return
		}
		if super := c.SuperClass(); super != nil {
			queue = append(queue, super)
		}
		queue = append(queue, c.Interfaces()...)
	}
}
