package formula

import (
	"fmt"

	"github.com/amsen20/placebid/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// restrict walks the parsed syntax tree and rejects every construct
// outside the closed grammar. The walk runs once at parse time; after
// it succeeds, evaluation is bounded and linear in the input size.
func restrict(expr hclsyntax.Expression) error {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if !e.Val.Type().Equals(cty.Number) {
			return fmt.Errorf("%w: only numeric literals are allowed, got %s", model.ErrFormula, e.Val.Type().FriendlyName())
		}
		return nil

	case *hclsyntax.ScopeTraversalExpr:
		return restrictTraversal(e.Traversal)

	case *hclsyntax.ParenthesesExpr:
		return restrict(e.Expression)

	case *hclsyntax.BinaryOpExpr:
		switch e.Op {
		case hclsyntax.OpAdd, hclsyntax.OpSubtract, hclsyntax.OpMultiply, hclsyntax.OpDivide:
		case hclsyntax.OpModulo:
			if !isConstantOperand(e.RHS) {
				return fmt.Errorf("%w: modulo operand must be a literal constant", model.ErrFormula)
			}
		default:
			return fmt.Errorf("%w: operator not allowed", model.ErrFormula)
		}

		if err := restrict(e.LHS); err != nil {
			return err
		}
		return restrict(e.RHS)

	case *hclsyntax.FunctionCallExpr:
		if e.Name != "count" {
			return fmt.Errorf("%w: unknown function %q", model.ErrFormula, e.Name)
		}
		if len(e.Args) != 2 {
			return fmt.Errorf("%w: count takes exactly two arguments, got %d", model.ErrFormula, len(e.Args))
		}
		for _, arg := range e.Args {
			if _, ok := arg.(*hclsyntax.ScopeTraversalExpr); !ok {
				return fmt.Errorf("%w: count arguments must be record fields", model.ErrFormula)
			}
			if err := restrict(arg); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: construct %T is not in the formula grammar", model.ErrFormula, expr)
	}
}

func restrictTraversal(traversal hcl.Traversal) error {
	root, ok := traversal[0].(hcl.TraverseRoot)
	if !ok {
		return fmt.Errorf("%w: unexpected traversal shape", model.ErrFormula)
	}

	if constants[root.Name] {
		if len(traversal) != 1 {
			return fmt.Errorf("%w: %q has no attributes", model.ErrFormula, root.Name)
		}
		return nil
	}

	var fields map[string]bool
	switch root.Name {
	case "request":
		fields = requestFields
	case "offer":
		fields = offerFields
	default:
		return fmt.Errorf("%w: unknown variable %q", model.ErrFormula, root.Name)
	}

	if len(traversal) != 2 {
		return fmt.Errorf("%w: %q must be accessed as a single field", model.ErrFormula, root.Name)
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return fmt.Errorf("%w: %q must be accessed as a single field", model.ErrFormula, root.Name)
	}
	if !fields[attr.Name] {
		return fmt.Errorf("%w: unknown field %q on %q", model.ErrFormula, attr.Name, root.Name)
	}

	return nil
}

// isConstantOperand accepts a numeric literal or the zones constant
// as the right-hand side of a modulo.
func isConstantOperand(expr hclsyntax.Expression) bool {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return e.Val.Type().Equals(cty.Number)
	case *hclsyntax.ParenthesesExpr:
		return isConstantOperand(e.Expression)
	case *hclsyntax.ScopeTraversalExpr:
		root, ok := e.Traversal[0].(hcl.TraverseRoot)
		return ok && len(e.Traversal) == 1 && constants[root.Name]
	}

	return false
}
