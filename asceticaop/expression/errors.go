package expression

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnresolvedReference = errors.New("unresolved pointcut reference")
	ErrMalformedExpression = errors.New("malformed pointcut expression")
	ErrDuplicateDefinition = errors.New("conflicting pointcut definition")
	ErrInvalidArgument     = errors.New("invalid pointcut argument")
	ErrNoParser            = errors.New("no expression parser configured")
)

// DefinitionError reports a pointcut that could not be turned into an
// ExpressionInfo. It carries the offending expression text.
type DefinitionError struct {
	Namespace  string
	Expression string
	Err        error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("pointcut %q in namespace %q: %v", e.Expression, e.Namespace, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}
