package patterns

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

const ConstructorName = reflection.ConstructorName

type ClassSignature struct {
	Attributes []AttributePattern
	Modifiers  ModifierPattern
	Type       TypePattern
}

func (s ClassSignature) String() string {
	return joinNonEmpty(attributesString(s.Attributes), s.Modifiers.String(), s.Type.String())
}

type MethodSignature struct {
	Attributes    []AttributePattern
	Modifiers     ModifierPattern
	ReturnType    TypePattern
	DeclaringType TypePattern
	Name          NamePattern
	Parameters    []TypePattern
}

func (s MethodSignature) String() string {
	return joinNonEmpty(
		attributesString(s.Attributes),
		s.Modifiers.String(),
		s.ReturnType.String(),
		s.DeclaringType.String()+"."+s.Name.String()+"("+parametersString(s.Parameters)+")",
	)
}

type ConstructorSignature struct {
	Attributes    []AttributePattern
	Modifiers     ModifierPattern
	DeclaringType TypePattern
	Parameters    []TypePattern
}

func (s ConstructorSignature) String() string {
	return joinNonEmpty(
		attributesString(s.Attributes),
		s.Modifiers.String(),
		s.DeclaringType.String()+"."+ConstructorName+"("+parametersString(s.Parameters)+")",
	)
}

type FieldSignature struct {
	Attributes    []AttributePattern
	Modifiers     ModifierPattern
	Type          TypePattern
	DeclaringType TypePattern
	Name          NamePattern
}

func (s FieldSignature) String() string {
	return joinNonEmpty(
		attributesString(s.Attributes),
		s.Modifiers.String(),
		s.Type.String(),
		s.DeclaringType.String()+"."+s.Name.String(),
	)
}

// CompileClass compiles "[@Attr] [modifiers] TypePattern".
func CompileClass(text string) (ClassSignature, error) {
	attributes, modifiers, rest, err := splitPrefix(text)
	if err != nil {
		return ClassSignature{}, err
	}
	if len(rest) != 1 {
		return ClassSignature{}, errors.Wrapf(ErrMalformedPattern, "class pattern %q: expected a single type", text)
	}
	typePattern, err := CompileType(rest[0])
	if err != nil {
		return ClassSignature{}, err
	}
	if typePattern.IsEagerWildcard() {
		return ClassSignature{}, errors.Wrapf(ErrMalformedPattern, "class pattern %q: eager wildcard is not a type", text)
	}
	return ClassSignature{Attributes: attributes, Modifiers: modifiers, Type: typePattern}, nil
}

// CompileMethod compiles "[@Attr] [modifiers] ReturnType [Declaring.]name(params)".
func CompileMethod(text string) (MethodSignature, error) {
	head, params, err := splitParameters(text)
	if err != nil {
		return MethodSignature{}, err
	}
	attributes, modifiers, rest, err := splitPrefix(head)
	if err != nil {
		return MethodSignature{}, err
	}
	if len(rest) != 2 {
		return MethodSignature{}, errors.Wrapf(ErrMalformedPattern, "method pattern %q: expected return type and name", text)
	}
	returnType, err := CompileType(rest[0])
	if err != nil {
		return MethodSignature{}, err
	}
	declaring, name := splitQualifiedName(rest[1])
	declaringType, err := CompileType(declaring)
	if err != nil {
		return MethodSignature{}, err
	}
	namePattern, err := CompileName(name)
	if err != nil {
		return MethodSignature{}, err
	}
	parameters, err := compileParameters(params)
	if err != nil {
		return MethodSignature{}, errors.Wrapf(err, "method pattern %q", text)
	}
	return MethodSignature{
		Attributes:    attributes,
		Modifiers:     modifiers,
		ReturnType:    returnType,
		DeclaringType: declaringType,
		Name:          namePattern,
		Parameters:    parameters,
	}, nil
}

// CompileConstructor compiles "[@Attr] [modifiers] [Declaring.]new(params)".
func CompileConstructor(text string) (ConstructorSignature, error) {
	head, params, err := splitParameters(text)
	if err != nil {
		return ConstructorSignature{}, err
	}
	attributes, modifiers, rest, err := splitPrefix(head)
	if err != nil {
		return ConstructorSignature{}, err
	}
	if len(rest) != 1 {
		return ConstructorSignature{}, errors.Wrapf(ErrMalformedPattern, "constructor pattern %q: expected Type.%s", text, ConstructorName)
	}
	declaring, name := splitQualifiedName(rest[0])
	if name != ConstructorName {
		return ConstructorSignature{}, errors.Wrapf(ErrMalformedPattern, "constructor pattern %q: expected Type.%s", text, ConstructorName)
	}
	declaringType, err := CompileType(declaring)
	if err != nil {
		return ConstructorSignature{}, err
	}
	parameters, err := compileParameters(params)
	if err != nil {
		return ConstructorSignature{}, errors.Wrapf(err, "constructor pattern %q", text)
	}
	return ConstructorSignature{
		Attributes:    attributes,
		Modifiers:     modifiers,
		DeclaringType: declaringType,
		Parameters:    parameters,
	}, nil
}

// CompileField compiles "[@Attr] [modifiers] FieldType [Declaring.]name".
func CompileField(text string) (FieldSignature, error) {
	if strings.ContainsAny(text, "()") {
		return FieldSignature{}, errors.Wrapf(ErrMalformedPattern, "field pattern %q: unexpected parameter list", text)
	}
	attributes, modifiers, rest, err := splitPrefix(text)
	if err != nil {
		return FieldSignature{}, err
	}
	if len(rest) != 2 {
		return FieldSignature{}, errors.Wrapf(ErrMalformedPattern, "field pattern %q: expected field type and name", text)
	}
	fieldType, err := CompileType(rest[0])
	if err != nil {
		return FieldSignature{}, err
	}
	declaring, name := splitQualifiedName(rest[1])
	declaringType, err := CompileType(declaring)
	if err != nil {
		return FieldSignature{}, err
	}
	namePattern, err := CompileName(name)
	if err != nil {
		return FieldSignature{}, err
	}
	return FieldSignature{
		Attributes:    attributes,
		Modifiers:     modifiers,
		Type:          fieldType,
		DeclaringType: declaringType,
		Name:          namePattern,
	}, nil
}

func splitParameters(text string) (head, params string, err error) {
	open := strings.Index(text, "(")
	closing := strings.LastIndex(text, ")")
	if open < 0 || closing < open || strings.TrimSpace(text[closing+1:]) != "" {
		return "", "", errors.Wrapf(ErrMalformedPattern, "pattern %q: expected a parameter list", text)
	}
	return text[:open], text[open+1 : closing], nil
}

func splitPrefix(text string) (attributes []AttributePattern, modifiers ModifierPattern, rest []string, err error) {
	tokens := strings.Fields(text)
	i := 0
	for ; i < len(tokens); i++ {
		token := tokens[i]
		bare := strings.TrimPrefix(token, "!")
		switch {
		case strings.HasPrefix(bare, "@"):
			attribute, err := CompileAttribute(token)
			if err != nil {
				return nil, ModifierPattern{}, nil, err
			}
			attributes = append(attributes, attribute)
		case reflection.IsModifier(bare):
			if err := modifiers.add(token); err != nil {
				return nil, ModifierPattern{}, nil, err
			}
		default:
			return attributes, modifiers, tokens[i:], nil
		}
	}
	return attributes, modifiers, nil, nil
}

// splitQualifiedName splits "a.b.Type.name" at the last dot. "a..name"
// yields the declaring type "a..*"; an undotted name has any declaring type.
func splitQualifiedName(qualified string) (declaring, name string) {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return AnyWildcard, qualified
	}
	if i > 0 && qualified[i-1] == '.' {
		return qualified[:i+1] + AnyWildcard, qualified[i+1:]
	}
	return qualified[:i], qualified[i+1:]
}

func compileParameters(text string) ([]TypePattern, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	result := make([]TypePattern, 0, len(parts))
	for _, part := range parts {
		tp, err := CompileType(part)
		if err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	return result, nil
}

func parametersString(parameters []TypePattern) string {
	parts := make([]string, len(parameters))
	for i, p := range parameters {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func attributesString(attributes []AttributePattern) string {
	parts := make([]string, len(attributes))
	for i, a := range attributes {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

func joinNonEmpty(parts ...string) string {
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return strings.Join(result, " ")
}
