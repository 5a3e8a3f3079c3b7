package program

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

type outputState struct {
	name         string
	expr         hcl.Expression
	dependencies []node
}

func (os *outputState) prepare(ctx *programContext) hcl.Diagnostics {
	deps, diags := expressionDeps(ctx, os.expr)
	os.dependencies = deps
	return diags
}

func (os *outputState) evaluate(ctx *programContext) (cty.Value, hcl.Diagnostics) {
	vars := map[string]cty.Value{}
	for _, dep := range os.dependencies {
		val, _, ok := dep.await(ctx)
		if !ok {
			return cty.UnknownVal(cty.DynamicPseudoType), nil
		}
		vars[dep.nodeName()] = val
	}

	evalContext := builtinEvalContext.NewChild()
	evalContext.Variables = vars

	return os.expr.Value(evalContext)
}
