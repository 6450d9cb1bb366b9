package reflection

// ConstructorName is the name reported by constructors of the in-memory model.
const ConstructorName = "new"

type ClassOption func(*Class)

func WithSuperClass(super ClassInfo) ClassOption {
	return func(c *Class) {
		c.super = super
	}
}

func WithInterfaces(interfaces ...ClassInfo) ClassOption {
	return func(c *Class) {
		c.interfaces = append(c.interfaces, interfaces...)
	}
}

func WithClassModifiers(modifiers Modifiers) ClassOption {
	return func(c *Class) {
		c.modifiers = modifiers
	}
}

func WithClassAnnotations(annotations ...string) ClassOption {
	return func(c *Class) {
		c.annotations = append(c.annotations, annotations...)
	}
}

// NewClass creates an in-memory ClassInfo. Members are attached with
// AddMethod, AddConstructor and AddField so that they know their declaring type.
func NewClass(name string, opts ...ClassOption) *Class {
	c := &Class{name: name}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Class struct {
	name         string
	modifiers    Modifiers
	annotations  []string
	super        ClassInfo
	interfaces   []ClassInfo
	methods      []MethodInfo
	fields       []FieldInfo
	constructors []ConstructorInfo
}

func (c *Class) Kind() Kind {
	return KindClass
}

func (c *Class) Name() string {
	return c.name
}

func (c *Class) Modifiers() Modifiers {
	return c.modifiers
}

func (c *Class) Annotations() []string {
	return c.annotations
}

func (c *Class) SuperClass() ClassInfo {
	return c.super
}

func (c *Class) Interfaces() []ClassInfo {
	return c.interfaces
}

func (c *Class) Methods() []MethodInfo {
	return c.methods
}

func (c *Class) Fields() []FieldInfo {
	return c.fields
}

func (c *Class) Constructors() []ConstructorInfo {
	return c.constructors
}

func (c *Class) String() string {
	return c.name
}

func (c *Class) AddMethod(name string, opts ...MemberOption) *Method {
	m := &Method{member: newMember(name, c, opts)}
	c.methods = append(c.methods, m)
	return m
}

func (c *Class) AddConstructor(opts ...MemberOption) *Constructor {
	ctor := &Constructor{member: newMember(ConstructorName, c, opts)}
	c.constructors = append(c.constructors, ctor)
	return ctor
}

func (c *Class) AddField(name string, fieldType ClassInfo, opts ...MemberOption) *Field {
	f := &Field{member: newMember(name, c, opts)}
	f.fieldType = fieldType
	c.fields = append(c.fields, f)
	return f
}

type MemberOption func(*member)

func WithModifiers(modifiers Modifiers) MemberOption {
	return func(m *member) {
		m.modifiers = modifiers
	}
}

func WithAnnotations(annotations ...string) MemberOption {
	return func(m *member) {
		m.annotations = append(m.annotations, annotations...)
	}
}

func WithParameters(types ...ClassInfo) MemberOption {
	return func(m *member) {
		m.parameters = append(m.parameters, types...)
	}
}

func WithReturnType(returnType ClassInfo) MemberOption {
	return func(m *member) {
		m.returnType = returnType
	}
}

type member struct {
	name          string
	modifiers     Modifiers
	annotations   []string
	declaringType ClassInfo
	parameters    []ClassInfo
	returnType    ClassInfo
	fieldType     ClassInfo
}

func newMember(name string, declaringType ClassInfo, opts []MemberOption) member {
	m := member{name: name, declaringType: declaringType}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m *member) Name() string {
	return m.name
}

func (m *member) Modifiers() Modifiers {
	return m.modifiers
}

func (m *member) Annotations() []string {
	return m.annotations
}

func (m *member) DeclaringType() ClassInfo {
	return m.declaringType
}

type Method struct {
	member
}

func (m *Method) Kind() Kind {
	return KindMethod
}

func (m *Method) ParameterTypes() []ClassInfo {
	return m.parameters
}

func (m *Method) ReturnType() ClassInfo {
	return m.returnType
}

func (m *Method) String() string {
	return m.declaringType.Name() + "." + m.name
}

type Constructor struct {
	member
}

func (c *Constructor) Kind() Kind {
	return KindConstructor
}

func (c *Constructor) ParameterTypes() []ClassInfo {
	return c.parameters
}

func (c *Constructor) String() string {
	return c.declaringType.Name() + "." + c.name
}

type Field struct {
	member
}

func (f *Field) Kind() Kind {
	return KindField
}

func (f *Field) Type() ClassInfo {
	return f.fieldType
}

func (f *Field) String() string {
	return f.declaringType.Name() + "." + f.name
}
