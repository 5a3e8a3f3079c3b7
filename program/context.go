package program

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/loomstack/loom/sdk/loom"
)

type node interface {
	nodeName() string
	prepare(ctx *programContext) hcl.Diagnostics
	evaluate(ctx *programContext)
	await(ctx *programContext) (cty.Value, hcl.Diagnostics, bool)
}

type resourceOptions struct {
	ID                  *string   `hcl:"id,attr"`
	Parent              *string   `hcl:"parent,attr"`
	DependsOn           *[]string `hcl:"dependsOn,attr"`
	Protect             *bool     `hcl:"protect,attr"`
	Provider            *string   `hcl:"provider,attr"`
	Version             *string   `hcl:"version,attr"`
	DeleteBeforeReplace *bool     `hcl:"deleteBeforeReplace,attr"`
	Import              *string   `hcl:"import,attr"`
	IgnoreChanges       *[]string `hcl:"ignoreChanges,attr"`
	ReplaceOnChanges    *[]string `hcl:"replaceOnChanges,attr"`
}

type resourceDecl struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type,label"`

	Options *resourceOptions `hcl:"options,block"`

	Config hcl.Body `hcl:",remain"`
}

type outputsDecl struct {
	Vars map[string]hcl.Expression `hcl:",remain"`
}

type toplevel struct {
	Resources []resourceDecl `hcl:"resource,block"`
	Outputs   []outputsDecl  `hcl:"outputs,block"`

	Locals hcl.Body `hcl:",remain"`
}

type programContext struct {
	cancel context.Context
	core   *loom.Context

	parser  *hclparse.Parser
	schemae map[string]*packageSchema
	nodes   map[string]node
	outputs map[string]*outputState
}

func newProgramContext(cancel context.Context, core *loom.Context) *programContext {
	return &programContext{
		cancel:  cancel,
		core:    core,
		parser:  hclparse.NewParser(),
		schemae: map[string]*packageSchema{},
		nodes:   map[string]node{},
		outputs: map[string]*outputState{},
	}
}

func (ctx *programContext) ensureSchema(pkgName string) (*packageSchema, error) {
	schema, ok := ctx.schemae[pkgName]
	if ok {
		return schema, nil
	}

	schema, err := loadSchema(pkgName)
	if err != nil {
		return nil, err
	}
	ctx.schemae[pkgName] = schema
	return schema, nil
}

func (ctx *programContext) addFile(path string, contents []byte) hcl.Diagnostics {
	file, diags := ctx.parser.ParseHCL(contents, path)
	if diags.HasErrors() {
		return diags
	}

	var raw toplevel
	if diags = gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return diags
	}

	// Decode the body attributes. Note that we ignore diagnostics here because
	// of an apparent bug in "remain" that causes blocks to still be present in
	// the populated hcl.Body.
	locals, _ := raw.Locals.JustAttributes()

	for _, r := range raw.Resources {
		pkgName, _, _, tokenDiags := decomposeToken(r.Type, r.Config.MissingItemRange())
		if tokenDiags.HasErrors() {
			return tokenDiags
		}
		pkgSchema, err := ctx.ensureSchema(pkgName)
		if err != nil {
			return diagnosticsFromError(err)
		}
		resourceSchema, ok := pkgSchema.resources[r.Type]
		if !ok {
			return diagnosticsFromError(errors.Errorf("unknown resource type %s", r.Type))
		}

		if _, ok := ctx.nodes[r.Name]; ok {
			return diagnosticsFromError(errors.Errorf("duplicate definition %s", r.Name))
		}

		decl := r
		ctx.nodes[r.Name] = newResourceState(r.Name, resourceSchema, &decl)
	}

	for _, l := range locals {
		if _, ok := ctx.nodes[l.Name]; ok {
			return diagnosticsFromError(errors.Errorf("duplicate definition %s", l.Name))
		}

		ctx.nodes[l.Name] = newLocalState(l.Name, l.Expr)
	}

	for _, o := range raw.Outputs {
		for name, expr := range o.Vars {
			if _, ok := ctx.outputs[name]; ok {
				return diagnosticsFromError(errors.Errorf("duplicate output %s", name))
			}
			ctx.outputs[name] = &outputState{name: name, expr: expr}
		}
	}

	return nil
}

func expressionDeps(ctx *programContext, expr hcl.Expression) ([]node, hcl.Diagnostics) {
	var deps []node
	var diags hcl.Diagnostics
	for _, v := range expr.Variables() {
		depName := v.RootName()
		dep, ok := ctx.nodes[depName]
		if !ok {
			diags = append(diags, unknownResource(depName, v.SourceRange()))
		} else {
			deps = append(deps, dep)
		}
	}
	if n, ok := expr.(hclsyntax.Node); ok {
		hclsyntax.VisitAll(n, func(n hclsyntax.Node) hcl.Diagnostics {
			if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				if _, ok := builtinEvalContext.Functions[call.Name]; !ok {
					diags = append(diags, unknownFunction(call.Name, call.NameRange))
				}
			}
			return nil
		})
	}
	return deps, diags
}
