package program

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

type localState struct {
	*awaitable

	name         string
	expr         hcl.Expression
	dependencies []node

	diagnostics hcl.Diagnostics
	value       cty.Value
}

func newLocalState(name string, expr hcl.Expression) *localState {
	return &localState{
		awaitable: newAwaitable(),
		name:      name,
		expr:      expr,
	}
}

func (ls *localState) nodeName() string {
	return ls.name
}

func (ls *localState) prepare(ctx *programContext) hcl.Diagnostics {
	deps, diags := expressionDeps(ctx, ls.expr)
	ls.dependencies = deps
	return diags
}

func (ls *localState) evaluate(ctx *programContext) {
	result := uint32(awaitableResolved)

	defer func() {
		ls.fulfill(result)
	}()

	vars := map[string]cty.Value{}
	for _, dep := range ls.dependencies {
		val, _, ok := dep.await(ctx)
		if !ok {
			result = awaitableCanceled
			return
		}
		vars[dep.nodeName()] = val
	}
	evalContext := builtinEvalContext.NewChild()
	evalContext.Variables = vars

	ls.value, ls.diagnostics = ls.expr.Value(evalContext)
	if ls.diagnostics.HasErrors() {
		result = awaitableRejected
	}
}

func (ls *localState) await(ctx *programContext) (cty.Value, hcl.Diagnostics, bool) {
	state, fulfilled := ls.awaitable.await(ctx.cancel)
	if !fulfilled {
		return cty.Value{}, nil, false
	}
	if state != awaitableResolved {
		return cty.Value{}, ls.diagnostics, false
	}

	return ls.value, nil, true
}
