package reflection

type Kind int

const (
	KindClass Kind = iota
	KindMethod
	KindConstructor
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	}
	return "unknown"
}

// Element is the structural view of any advisable program element.
type Element interface {
	Kind() Kind
	Name() string
	Modifiers() Modifiers
	Annotations() []string
}

type ClassInfo interface {
	Element
	SuperClass() ClassInfo
	Interfaces() []ClassInfo
	Methods() []MethodInfo
	Fields() []FieldInfo
	Constructors() []ConstructorInfo
}

type MemberInfo interface {
	Element
	DeclaringType() ClassInfo
}

type MethodInfo interface {
	MemberInfo
	ParameterTypes() []ClassInfo
	ReturnType() ClassInfo
}

type ConstructorInfo interface {
	MemberInfo
	ParameterTypes() []ClassInfo
}

type FieldInfo interface {
	MemberInfo
	Type() ClassInfo
}
