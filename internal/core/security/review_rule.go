package security

import (
	"github.com/google/cel-go/cel"

	"quintastock/internal/core/apperror"
)

// ReviewInput describes a submitted transfer for rule evaluation.
type ReviewInput struct {
	RequesterRole string
	FromQuinta    string
	ToQuinta      string
	MovementType  string
	TotalQuantity int
}

// ReviewRule is a compiled CEL expression deciding whether a transfer that
// would otherwise be auto-approved must wait for manual review instead.
// An empty rule (nil *ReviewRule) never requires review.
//
// Example: `movementType == "Saída" && totalQuantity > 120`
type ReviewRule struct {
	program cel.Program
	source  string
}

// CompileReviewRule compiles expr into a ReviewRule. An empty expression
// yields a nil rule.
func CompileReviewRule(expr string) (*ReviewRule, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("requesterRole", cel.StringType),
		cel.Variable("fromQuinta", cel.StringType),
		cel.Variable("toQuinta", cel.StringType),
		cel.Variable("movementType", cel.StringType),
		cel.Variable("totalQuantity", cel.IntType),
	)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid review rule expression").WithCause(issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("review rule expression must evaluate to a boolean")
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &ReviewRule{program: program, source: expr}, nil
}

// RequiresReview evaluates the rule against a transfer. Evaluation errors
// fail closed: the transfer is sent to review.
func (r *ReviewRule) RequiresReview(in ReviewInput) bool {
	if r == nil {
		return false
	}

	out, _, err := r.program.Eval(map[string]any{
		"requesterRole": in.RequesterRole,
		"fromQuinta":    in.FromQuinta,
		"toQuinta":      in.ToQuinta,
		"movementType":  in.MovementType,
		"totalQuantity": in.TotalQuantity,
	})
	if err != nil {
		return true
	}

	matched, ok := out.Value().(bool)
	return ok && matched
}

// Source returns the original expression, for logging.
func (r *ReviewRule) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}
