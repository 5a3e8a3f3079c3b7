package program

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A canceled wait must not surface per-node diagnostics: the evaluate
// goroutine may still be writing them.
func TestAwaitCanceledReturnsNoDiagnostics(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := &programContext{cancel: canceled}

	ls := newLocalState("x", nil)
	_, diags, ok := ls.await(ctx)
	assert.False(t, ok)
	assert.Nil(t, diags)

	rs := newResourceState("r", nil, nil)
	_, diags, ok = rs.await(ctx)
	assert.False(t, ok)
	assert.Nil(t, diags)
}

func TestAwaitRejectedReturnsDiagnostics(t *testing.T) {
	expr, parseDiags := hclsyntax.ParseExpression([]byte("missing + 1"), "test.pp", hcl.InitialPos)
	require.False(t, parseDiags.HasErrors())

	ls := newLocalState("x", expr)
	ctx := &programContext{cancel: context.Background()}
	ls.evaluate(ctx)

	_, diags, ok := ls.await(ctx)
	assert.False(t, ok)
	require.True(t, diags.HasErrors())
}
