package pointcut

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/pointcut/domain/patterns"
)

var ErrMalformedReference = errors.New("malformed pointcut reference")

type Operator string

const (
	OperatorAnd Operator = "&&"
	OperatorOr  Operator = "||"
	OperatorNot Operator = "!"
)

// Node is an immutable pointcut AST node. The set of implementations is closed.
type Node interface {
	String() string
	node()
}

func Not(operand Node) PrefixNode {
	return PrefixNode{
		operator: OperatorNot,
		operand:  operand,
	}
}

type PrefixNode struct {
	operator Operator
	operand  Node
}

func (n PrefixNode) Operand() Node {
	return n.operand
}

func (n PrefixNode) Operator() Operator {
	return n.operator
}

func (n PrefixNode) String() string {
	return string(n.operator) + n.operand.String()
}

func (PrefixNode) node() {}

func And(left Node, rights ...Node) InfixNode {
	left, right := foldRights(And, left, rights...)
	return InfixNode{
		left:     left,
		operator: OperatorAnd,
		right:    right,
	}
}

func Or(left Node, rights ...Node) InfixNode {
	left, right := foldRights(Or, left, rights...)
	return InfixNode{
		left:     left,
		operator: OperatorOr,
		right:    right,
	}
}

func foldRights(
	aCallable func(Node, ...Node) InfixNode,
	aLeft Node,
	aRights ...Node,
) (left, right Node) {
	for len(aRights) > 1 {
		aLeft = aCallable(aLeft, aRights[0])
		aRights = aRights[1:]
	}
	return aLeft, aRights[0]
}

type InfixNode struct {
	left     Node
	operator Operator
	right    Node
}

func (n InfixNode) Left() Node {
	return n.left
}

func (n InfixNode) Operator() Operator {
	return n.operator
}

func (n InfixNode) Right() Node {
	return n.right
}

func (n InfixNode) String() string {
	return "(" + n.left.String() + " " + string(n.operator) + " " + n.right.String() + ")"
}

func (InfixNode) node() {}

type Category string

const (
	CategoryExecution            Category = "execution"
	CategoryCall                 Category = "call"
	CategorySet                  Category = "set"
	CategoryGet                  Category = "get"
	CategoryHandler              Category = "handler"
	CategoryWithin               Category = "within"
	CategoryWithinCode           Category = "withincode"
	CategoryStaticInitialization Category = "staticinitialization"
	CategoryCflow                Category = "cflow"
	CategoryCflowBelow           Category = "cflowbelow"
	CategoryHasMethod            Category = "hasmethod"
	CategoryHasField             Category = "hasfield"
)

func (c Category) IsControlFlow() bool {
	return c == CategoryCflow || c == CategoryCflowBelow
}

func Execution(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryExecution, pattern)
}

func Call(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryCall, pattern)
}

func Set(pattern Node) PointcutNode {
	return NewPointcutNode(CategorySet, pattern)
}

func Get(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryGet, pattern)
}

func Handler(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryHandler, pattern)
}

func Within(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryWithin, pattern)
}

func WithinCode(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryWithinCode, pattern)
}

func StaticInitialization(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryStaticInitialization, pattern)
}

func Cflow(expression Node) PointcutNode {
	return NewPointcutNode(CategoryCflow, expression)
}

func CflowBelow(expression Node) PointcutNode {
	return NewPointcutNode(CategoryCflowBelow, expression)
}

func HasMethod(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryHasMethod, pattern)
}

func HasField(pattern Node) PointcutNode {
	return NewPointcutNode(CategoryHasField, pattern)
}

func NewPointcutNode(category Category, pattern Node) PointcutNode {
	return PointcutNode{
		category: category,
		pattern:  pattern,
	}
}

// PointcutNode marks its single child with a predicate category. For
// cflow and cflowbelow the child is a whole sub-expression.
type PointcutNode struct {
	category Category
	pattern  Node
}

func (n PointcutNode) Category() Category {
	return n.category
}

func (n PointcutNode) Pattern() Node {
	return n.pattern
}

func (n PointcutNode) String() string {
	return string(n.category) + "(" + n.pattern.String() + ")"
}

func (PointcutNode) node() {}

// Args builds an argument-list node. Each item is a type pattern, a bound
// argument name or the eager wildcard "..".
func Args(items ...string) (ArgsNode, error) {
	parameters := make([]ArgParameterNode, 0, len(items))
	for _, item := range items {
		p, err := ArgParameter(item)
		if err != nil {
			return ArgsNode{}, err
		}
		parameters = append(parameters, p)
	}
	return ArgsNode{parameters: parameters}, nil
}

func MustArgs(items ...string) ArgsNode {
	n, err := Args(items...)
	if err != nil {
		panic(err)
	}
	return n
}

type ArgsNode struct {
	parameters []ArgParameterNode
}

func (n ArgsNode) Parameters() []ArgParameterNode {
	return n.parameters
}

func (n ArgsNode) String() string {
	parts := make([]string, len(n.parameters))
	for i, p := range n.parameters {
		parts[i] = p.String()
	}
	return "args(" + strings.Join(parts, ", ") + ")"
}

func (ArgsNode) node() {}

func ArgParameter(text string) (ArgParameterNode, error) {
	tp, err := patterns.CompileType(text)
	if err != nil {
		return ArgParameterNode{}, err
	}
	return ArgParameterNode{typePattern: tp}, nil
}

type ArgParameterNode struct {
	typePattern patterns.TypePattern
}

func (n ArgParameterNode) TypePattern() patterns.TypePattern {
	return n.typePattern
}

func (n ArgParameterNode) IsEagerWildcard() bool {
	return n.typePattern.IsEagerWildcard()
}

func (n ArgParameterNode) String() string {
	return n.typePattern.String()
}

func (ArgParameterNode) node() {}

// Reference builds a named pointcut reference from its call text, for
// example "Tracing.traced(order, qty)".
func Reference(text string) (ReferenceNode, error) {
	name, arguments, err := ParseReference(text)
	if err != nil {
		return ReferenceNode{}, err
	}
	return ReferenceNode{name: name, arguments: arguments}, nil
}

func MustReference(text string) ReferenceNode {
	n, err := Reference(text)
	if err != nil {
		panic(err)
	}
	return n
}

type ReferenceNode struct {
	name      string
	arguments []string
}

// Name is the possibly dotted name of the referenced pointcut.
func (n ReferenceNode) Name() string {
	return n.name
}

// Arguments are the names passed at the call site, in signature order.
func (n ReferenceNode) Arguments() []string {
	return n.arguments
}

func (n ReferenceNode) String() string {
	if n.arguments == nil {
		return n.name
	}
	return n.name + "(" + strings.Join(n.arguments, ", ") + ")"
}

func (ReferenceNode) node() {}

// ParseReference splits "ns.name(a, b)" into the qualified name and the
// argument names. A reference without parentheses has no arguments.
func ParseReference(text string) (name string, arguments []string, err error) {
	text = strings.TrimSpace(text)
	open := strings.Index(text, "(")
	if open < 0 {
		name = text
	} else {
		if !strings.HasSuffix(text, ")") {
			return "", nil, errors.Wrapf(ErrMalformedReference, "%q: unbalanced parentheses", text)
		}
		name = strings.TrimSpace(text[:open])
		inner := strings.TrimSpace(text[open+1 : len(text)-1])
		arguments = []string{}
		if inner != "" {
			for _, arg := range strings.Split(inner, ",") {
				arg = strings.TrimSpace(arg)
				if arg == "" || strings.ContainsAny(arg, "() ") {
					return "", nil, errors.Wrapf(ErrMalformedReference, "%q: bad argument %q", text, arg)
				}
				arguments = append(arguments, arg)
			}
		}
	}
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.ContainsAny(name, "() *") {
		return "", nil, errors.Wrapf(ErrMalformedReference, "%q: bad name", text)
	}
	return name, arguments, nil
}
