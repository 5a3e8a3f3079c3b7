package program

import (
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func callScript(t *testing.T, args ...cty.Value) cty.Value {
	v, err := scriptFunc.Call(args)
	require.NoError(t, err)
	return v
}

func TestScriptExpressions(t *testing.T) {
	v := callScript(t, cty.StringVal(`1 + 2`))
	f, _ := v.AsBigFloat().Float64()
	assert.Equal(t, 3.0, f)

	v = callScript(t, cty.StringVal(`name + "-site"`), cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("demo"),
	}))
	assert.Equal(t, "demo-site", v.AsString())
}

func TestScriptRejectsNonObjectArgs(t *testing.T) {
	_, err := scriptFunc.Call([]cty.Value{cty.StringVal("1"), cty.StringVal("oops")})
	assert.Error(t, err)
}

func TestConvertValueToScriptObject(t *testing.T) {
	assert.Equal(t, tengo.UndefinedValue, convertValueToScriptObject(cty.NullVal(cty.String)))
	assert.Equal(t, tengo.UndefinedValue, convertValueToScriptObject(cty.UnknownVal(cty.String)))
	assert.Equal(t, tengo.TrueValue, convertValueToScriptObject(cty.True))

	o := convertValueToScriptObject(cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}))
	arr, ok := o.(*tengo.Array)
	require.True(t, ok)
	require.Len(t, arr.Value, 2)
	assert.Equal(t, "a", arr.Value[0].(*tengo.String).Value)

	o = convertValueToScriptObject(cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(7)}))
	m, ok := o.(*tengo.Map)
	require.True(t, ok)
	assert.Equal(t, 7.0, m.Value["n"].(*tengo.Float).Value)
}

func TestConvertScriptObjectToValue(t *testing.T) {
	v, err := convertScriptObjectToValue(&tengo.Map{Value: map[string]tengo.Object{
		"name":  &tengo.String{Value: "demo"},
		"count": &tengo.Int{Value: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, "demo", v.GetAttr("name").AsString())

	v, err = convertScriptObjectToValue(tengo.UndefinedValue)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = convertScriptObjectToValue(&tengo.Error{Value: &tengo.String{Value: "boom"}})
	assert.Error(t, err)
}
