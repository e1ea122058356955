// The objective formula is a transmissible string evaluated over a
// closed grammar: field access on the request and offer records,
// scalar arithmetic, modulo by a constant, and count(value, collection).
// Anything else is rejected before the first evaluation, so formulas
// coming from untrusted-adjacent configuration stay total and cheap.
package formula

import (
	"fmt"
	"strings"

	"github.com/amsen20/placebid/internal/config"
	"github.com/amsen20/placebid/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

var requestFields = map[string]bool{
	"appID":            true,
	"instanceNumber":   true,
	"totalInstances":   true,
	"requiredMemoryMB": true,
	"requiredDiskMB":   true,
	"sourceArtifactID": true,
	"stack":            true,
}

var offerFields = map[string]bool{
	"zoneID":            true,
	"availableMemoryMB": true,
	"availableDiskMB":   true,
	"totalMemoryMB":     true,
	"totalDiskMB":       true,
	"runningAppIDs":     true,
	"cachedArtifactIDs": true,
	"stack":             true,
}

var constants = map[string]bool{
	"zones": true,
	"alpha": true,
	"beta":  true,
	"gamma": true,
	"delta": true,
}

var countFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "value", Type: cty.DynamicPseudoType, AllowDynamicType: true},
		{Name: "collection", Type: cty.DynamicPseudoType, AllowDynamicType: true},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		collection := args[1]
		ty := collection.Type()
		if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
			return cty.NilVal, function.NewArgErrorf(1, "count expects a collection, got %s", ty.FriendlyName())
		}

		occurrences := 0
		for it := collection.ElementIterator(); it.Next(); {
			_, element := it.Element()
			if args[0].Equals(element).True() {
				occurrences += 1
			}
		}

		return cty.NumberIntVal(int64(occurrences)), nil
	},
})

// Evaluator scores (request, offer) pairs with a parsed formula.
// It is a pure function holder, safe for concurrent use.
type Evaluator struct {
	expr      hclsyntax.Expression
	constants map[string]cty.Value
}

func New(source string, zones int, weights config.Weights) (*Evaluator, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", model.ErrFormula, diags.Error())
	}

	if err := restrict(expr); err != nil {
		return nil, err
	}

	return &Evaluator{
		expr: expr,
		constants: map[string]cty.Value{
			"zones": cty.NumberIntVal(int64(zones)),
			"alpha": cty.NumberFloatVal(weights.Alpha),
			"beta":  cty.NumberFloatVal(weights.Beta),
			"gamma": cty.NumberFloatVal(weights.Gamma),
			"delta": cty.NumberFloatVal(weights.Delta),
		},
	}, nil
}

func (e *Evaluator) Score(request model.PlacementRequest, offer model.Offer) (score float64, err error) {
	// 0/0 makes big.Float panic instead of producing a NaN.
	defer func() {
		if recovered := recover(); recovered != nil {
			score = 0
			err = fmt.Errorf("%w: %v", model.ErrDivisionByZero, recovered)
		}
	}()

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"request": requestValue(request),
			"offer":   offerValue(offer),
		},
		Functions: map[string]function.Function{
			"count": countFunc,
		},
	}
	for name, value := range e.constants {
		ctx.Variables[name] = value
	}

	value, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		// The grammar walk already ruled static problems out, so a
		// failing evaluation is almost always 0/0 from a zero total,
		// which surfaces as a big.Float NaN complaint.
		if strings.Contains(strings.ToLower(diags.Error()), "zero") {
			return 0, fmt.Errorf("%w: %s", model.ErrDivisionByZero, diags.Error())
		}
		return 0, fmt.Errorf("%w: %s", model.ErrFormula, diags.Error())
	}
	if !value.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("%w: formula produced %s, want a number", model.ErrFormula, value.Type().FriendlyName())
	}

	bigScore := value.AsBigFloat()
	if bigScore.IsInf() {
		return 0, fmt.Errorf("%w: formula diverged, an offer reported a zero total", model.ErrDivisionByZero)
	}

	score, _ = bigScore.Float64()
	return score, nil
}

func requestValue(request model.PlacementRequest) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"appID":            cty.NumberIntVal(int64(request.AppID)),
		"instanceNumber":   cty.NumberIntVal(int64(request.InstanceNumber)),
		"totalInstances":   cty.NumberIntVal(int64(request.TotalInstances)),
		"requiredMemoryMB": cty.NumberIntVal(int64(request.RequiredMemoryMB)),
		"requiredDiskMB":   cty.NumberIntVal(int64(request.RequiredDiskMB)),
		"sourceArtifactID": cty.StringVal(request.SourceArtifactID),
		"stack":            cty.StringVal(request.Stack),
	})
}

func offerValue(offer model.Offer) cty.Value {
	runningAppIDs := cty.ListValEmpty(cty.Number)
	if len(offer.RunningAppIDs) > 0 {
		elements := make([]cty.Value, 0, len(offer.RunningAppIDs))
		for _, appID := range offer.RunningAppIDs {
			elements = append(elements, cty.NumberIntVal(int64(appID)))
		}
		runningAppIDs = cty.ListVal(elements)
	}

	cachedArtifactIDs := cty.ListValEmpty(cty.String)
	if len(offer.CachedArtifactIDs) > 0 {
		elements := make([]cty.Value, 0, len(offer.CachedArtifactIDs))
		for _, artifactID := range offer.CachedArtifactIDs {
			elements = append(elements, cty.StringVal(artifactID))
		}
		cachedArtifactIDs = cty.ListVal(elements)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"zoneID":            cty.NumberIntVal(int64(offer.ZoneID)),
		"availableMemoryMB": cty.NumberIntVal(int64(offer.AvailableMemoryMB)),
		"availableDiskMB":   cty.NumberIntVal(int64(offer.AvailableDiskMB)),
		"totalMemoryMB":     cty.NumberIntVal(int64(offer.TotalMemoryMB)),
		"totalDiskMB":       cty.NumberIntVal(int64(offer.TotalDiskMB)),
		"runningAppIDs":     runningAppIDs,
		"cachedArtifactIDs": cachedArtifactIDs,
		"stack":             cty.StringVal(offer.Stack),
	})
}
