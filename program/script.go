package program

import (
	"github.com/d5/tengo/v2"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// scriptFunc evaluates a Tengo expression with the attributes of the optional
// argument object bound as script variables.
var scriptFunc = function.New(&function.Spec{
	Params:   []function.Parameter{{Name: "src", Type: cty.String}},
	VarParam: &function.Parameter{Name: "args", Type: cty.DynamicPseudoType},
	Type:     function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		src := args[0].AsString()

		s := tengo.NewScript([]byte("__result__ := (" + src + ")"))
		if len(args) > 1 {
			arg := args[1]
			t := arg.Type()
			if !t.IsMapType() && !t.IsObjectType() {
				return cty.Value{}, errors.New("script arguments must be a map or object")
			}
			it := arg.ElementIterator()
			for it.Next() {
				k, v := it.Element()
				if err := s.Add(k.AsString(), convertValueToScriptObject(v)); err != nil {
					return cty.Value{}, err
				}
			}
		}

		compiled, err := s.Run()
		if err != nil {
			return cty.Value{}, errors.Wrap(err, "running script")
		}
		return convertScriptObjectToValue(compiled.Get("__result__").Object())
	},
})

func convertValueToScriptObject(v cty.Value) tengo.Object {
	if v.IsNull() || !v.IsKnown() {
		return tengo.UndefinedValue
	}

	t := v.Type()
	switch {
	case t.IsListType() || t.IsSetType() || t.IsTupleType():
		var arr []tengo.Object
		it := v.ElementIterator()
		for it.Next() {
			_, e := it.Element()
			arr = append(arr, convertValueToScriptObject(e))
		}
		return &tengo.Array{Value: arr}
	case t.IsMapType() || t.IsObjectType():
		m := map[string]tengo.Object{}
		it := v.ElementIterator()
		for it.Next() {
			k, v := it.Element()
			m[k.AsString()] = convertValueToScriptObject(v)
		}
		return &tengo.Map{Value: m}
	case t == cty.Bool:
		if v.True() {
			return tengo.TrueValue
		}
		return tengo.FalseValue
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return &tengo.Float{Value: f}
	case t == cty.String:
		return &tengo.String{Value: v.AsString()}
	default:
		return tengo.UndefinedValue
	}
}

func convertScriptObjectToValue(o tengo.Object) (cty.Value, error) {
	if o == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	switch o := o.(type) {
	case *tengo.Array, *tengo.ImmutableArray:
		it, arr := o.Iterate(), []cty.Value{}
		for it.Next() {
			v, err := convertScriptObjectToValue(it.Value())
			if err != nil {
				return cty.Value{}, err
			}
			arr = append(arr, v)
		}
		if len(arr) == 0 {
			return cty.ListValEmpty(cty.DynamicPseudoType), nil
		}
		return cty.TupleVal(arr), nil
	case *tengo.Bool:
		return cty.BoolVal(!o.IsFalsy()), nil
	case *tengo.Bytes:
		bytes := o.Value
		if len(bytes) == 0 {
			return cty.ListValEmpty(cty.Number), nil
		}
		numbers := make([]cty.Value, len(bytes))
		for i, b := range bytes {
			numbers[i] = cty.NumberIntVal(int64(b))
		}
		return cty.ListVal(numbers), nil
	case *tengo.Char:
		return cty.NumberIntVal(int64(o.Value)), nil
	case *tengo.Error:
		return cty.Value{}, errors.New(o.String())
	case *tengo.Float:
		return cty.NumberFloatVal(o.Value), nil
	case *tengo.Int:
		return cty.NumberIntVal(o.Value), nil
	case *tengo.Map, *tengo.ImmutableMap:
		it, attrs := o.Iterate(), map[string]cty.Value{}
		for it.Next() {
			key, ok := it.Key().(*tengo.String)
			if !ok {
				return cty.Value{}, errors.Errorf("unexpected map key of type %T", it.Key())
			}
			v, err := convertScriptObjectToValue(it.Value())
			if err != nil {
				return cty.Value{}, err
			}
			attrs[key.Value] = v
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil
	case *tengo.String:
		return cty.StringVal(o.Value), nil
	case *tengo.Time:
		return cty.NumberIntVal(o.Value.UnixNano()), nil
	case *tengo.Undefined:
		return cty.NullVal(cty.DynamicPseudoType), nil
	default:
		return cty.Value{}, errors.Errorf("unexpected script object of type %T", o)
	}
}
