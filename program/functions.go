package program

import (
	"io/ioutil"
	"mime"
	"path"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/loomstack/loom/sdk/loom"
)

var mimeTypeFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "filename", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(mime.TypeByExtension(path.Ext(args[0].AsString()))), nil
	},
})

var readDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "path", Type: cty.String}},
	Type:   function.StaticReturnType(cty.List(cty.String)),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		path := args[0].AsString()
		infos, err := ioutil.ReadDir(path)
		if err != nil {
			return cty.Value{}, err
		}
		if len(infos) == 0 {
			return cty.ListValEmpty(cty.String), nil
		}
		names := make([]cty.Value, len(infos))
		for i, info := range infos {
			names[i] = cty.StringVal(info.Name())
		}
		return cty.ListVal(names), nil
	},
})

var secretFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "value", Type: cty.DynamicPseudoType}},
	Type: func(args []cty.Value) (cty.Type, error) {
		return args[0].Type(), nil
	},
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return loom.Secret(args[0]), nil
	},
})

var builtinFunctions = map[string]function.Function{
	"mimeType": mimeTypeFunc,
	"readDir":  readDirFunc,
	"secret":   secretFunc,
	"script":   scriptFunc,
}

var builtinEvalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{},
	Functions: builtinFunctions,
}
