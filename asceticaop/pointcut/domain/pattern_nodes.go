package pointcut

import (
	"github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain/patterns"
)

func ClassPattern(text string) (ClassPatternNode, error) {
	sig, err := patterns.CompileClass(text)
	if err != nil {
		return ClassPatternNode{}, err
	}
	return ClassPatternNode{signature: sig}, nil
}

func MustClassPattern(text string) ClassPatternNode {
	return must(ClassPattern(text))
}

type ClassPatternNode struct {
	signature patterns.ClassSignature
}

func (n ClassPatternNode) Signature() patterns.ClassSignature {
	return n.signature
}

func (n ClassPatternNode) String() string {
	return n.signature.String()
}

func (ClassPatternNode) node() {}

func MethodPattern(text string) (MethodPatternNode, error) {
	sig, err := patterns.CompileMethod(text)
	if err != nil {
		return MethodPatternNode{}, err
	}
	return MethodPatternNode{signature: sig}, nil
}

func MustMethodPattern(text string) MethodPatternNode {
	return must(MethodPattern(text))
}

type MethodPatternNode struct {
	signature patterns.MethodSignature
}

func (n MethodPatternNode) Signature() patterns.MethodSignature {
	return n.signature
}

func (n MethodPatternNode) String() string {
	return n.signature.String()
}

func (MethodPatternNode) node() {}

func ConstructorPattern(text string) (ConstructorPatternNode, error) {
	sig, err := patterns.CompileConstructor(text)
	if err != nil {
		return ConstructorPatternNode{}, err
	}
	return ConstructorPatternNode{signature: sig}, nil
}

func MustConstructorPattern(text string) ConstructorPatternNode {
	return must(ConstructorPattern(text))
}

type ConstructorPatternNode struct {
	signature patterns.ConstructorSignature
}

func (n ConstructorPatternNode) Signature() patterns.ConstructorSignature {
	return n.signature
}

func (n ConstructorPatternNode) String() string {
	return n.signature.String()
}

func (ConstructorPatternNode) node() {}

func FieldPattern(text string) (FieldPatternNode, error) {
	sig, err := patterns.CompileField(text)
	if err != nil {
		return FieldPatternNode{}, err
	}
	return FieldPatternNode{signature: sig}, nil
}

func MustFieldPattern(text string) FieldPatternNode {
	return must(FieldPattern(text))
}

type FieldPatternNode struct {
	signature patterns.FieldSignature
}

func (n FieldPatternNode) Signature() patterns.FieldSignature {
	return n.signature
}

func (n FieldPatternNode) String() string {
	return n.signature.String()
}

func (FieldPatternNode) node() {}

func must[T any](n T, err error) T {
	if err != nil {
		panic(err)
	}
	return n
}
