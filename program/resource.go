package program

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/loomstack/loom/sdk/loom"
)

const (
	resourceRegistering           = awaitablePending
	resourceRegistrationSucceeded = awaitableResolved
	resourceRegistrationFailed    = awaitableRejected
	resourceRegistrationCanceled  = awaitableCanceled
)

type resourceState struct {
	*awaitable

	name   string
	schema *resourceSchema
	decl   *resourceDecl

	dependencies []node
	attributes   hcl.Attributes

	binding     *loom.Binding
	value       cty.Value
	diagnostics hcl.Diagnostics
}

func newResourceState(name string, schema *resourceSchema, decl *resourceDecl) *resourceState {
	return &resourceState{
		awaitable: newAwaitable(),
		name:      name,
		schema:    schema,
		decl:      decl,
	}
}

func (rs *resourceState) nodeName() string {
	return rs.name
}

// bodySchema derives the HCL schema of the resource's config body from its
// package schema. The options block is declared so that its presence in the
// remain body does not trip strict content decoding.
func (rs *resourceState) bodySchema() *hcl.BodySchema {
	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "options"}},
	}

	names := make([]string, 0, len(rs.schema.inputs))
	for name := range rs.schema.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{
			Name:     name,
			Required: rs.schema.inputs[name].required,
		})
	}
	return schema
}

func (rs *resourceState) prepare(ctx *programContext) hcl.Diagnostics {
	// Decode the body of the resource config.
	content, diags := rs.decl.Config.Content(rs.bodySchema())
	if diags.HasErrors() {
		return diags
	}
	rs.attributes = content.Attributes

	// Collect the resource's dependencies and ensure they are registered
	// before the resource itself.
	deps := map[node]struct{}{}
	for _, attr := range content.Attributes {
		attrDeps, attrDiags := expressionDeps(ctx, attr.Expr)
		diags = append(diags, attrDiags...)
		for _, dep := range attrDeps {
			deps[dep] = struct{}{}
		}
	}

	// The parent and dependsOn options name resources directly rather than
	// through expressions.
	addNamed := func(depName string) {
		dep, ok := ctx.nodes[depName]
		if !ok {
			diags = append(diags, unknownResource(depName, rs.decl.Config.MissingItemRange()))
			return
		}
		deps[dep] = struct{}{}
	}
	if opts := rs.decl.Options; opts != nil {
		if opts.Parent != nil {
			addNamed(*opts.Parent)
		}
		if opts.DependsOn != nil {
			for _, depName := range *opts.DependsOn {
				addNamed(depName)
			}
		}
	}

	for dep := range deps {
		rs.dependencies = append(rs.dependencies, dep)
	}
	return diags
}

// resourceOptions translates the declared options block into engine-level
// resource options. The named parent and dependsOn resources must already
// have been awaited.
func (rs *resourceState) resourceOptions(ctx *programContext) (*loom.ResourceOptions, string, error) {
	opts, id := &loom.ResourceOptions{}, ""
	decl := rs.decl.Options
	if decl == nil {
		return opts, id, nil
	}

	bindingFor := func(depName string) (*loom.Binding, error) {
		dep, ok := ctx.nodes[depName]
		if !ok {
			return nil, errors.Errorf("unknown resource %s", depName)
		}
		resourceDep, ok := dep.(*resourceState)
		if !ok {
			return nil, errors.Errorf("%s is not a resource", depName)
		}
		if resourceDep.binding == nil {
			return nil, errors.Errorf("resource %s was never registered", depName)
		}
		return resourceDep.binding, nil
	}

	if decl.ID != nil {
		id = *decl.ID
	}
	if decl.Parent != nil {
		parent, err := bindingFor(*decl.Parent)
		if err != nil {
			return nil, "", err
		}
		opts.Parent = parent
	}
	if decl.DependsOn != nil {
		for _, depName := range *decl.DependsOn {
			dep, err := bindingFor(depName)
			if err != nil {
				return nil, "", err
			}
			opts.DependsOn = append(opts.DependsOn, dep)
		}
	}
	if decl.Protect != nil {
		opts.Protect = *decl.Protect
	}
	if decl.Provider != nil {
		opts.Provider = *decl.Provider
	}
	if decl.Version != nil {
		opts.Version = *decl.Version
	}
	if decl.DeleteBeforeReplace != nil {
		opts.DeleteBeforeReplace = *decl.DeleteBeforeReplace
	}
	if decl.Import != nil {
		opts.Import = *decl.Import
	}
	if decl.IgnoreChanges != nil {
		opts.IgnoreChanges = append(opts.IgnoreChanges, *decl.IgnoreChanges...)
	}
	if decl.ReplaceOnChanges != nil {
		opts.ReplaceOnChanges = append(opts.ReplaceOnChanges, *decl.ReplaceOnChanges...)
	}
	return opts, id, nil
}

func (rs *resourceState) evaluate(ctx *programContext) {
	result := uint32(resourceRegistrationSucceeded)

	defer func() {
		rs.fulfill(result)
	}()

	fail := func(diags hcl.Diagnostics) {
		rs.diagnostics, result = append(rs.diagnostics, diags...), resourceRegistrationFailed
	}

	vars := map[string]cty.Value{}
	for _, dep := range rs.dependencies {
		val, _, ok := dep.await(ctx)
		if !ok {
			result = resourceRegistrationCanceled
			return
		}
		vars[dep.nodeName()] = val
	}
	evalContext := builtinEvalContext.NewChild()
	evalContext.Variables = vars

	inputs := loom.PropertyMap{}
	for name, attr := range rs.attributes {
		v, diags := attr.Expr.Value(evalContext)
		if diags.HasErrors() {
			fail(diags)
			return
		}
		if v.IsNull() {
			continue
		}
		converted, err := convert.Convert(v, rs.schema.inputs[name].typ)
		if err != nil {
			fail(diagnosticsFromError(errors.Wrapf(err, "input %q", name)))
			return
		}
		inputs[name] = converted
	}

	opts, id, err := rs.resourceOptions(ctx)
	if err != nil {
		fail(diagnosticsFromError(err))
		return
	}

	var b *loom.Binding
	if id != "" {
		// An explicit id adopts the engine's view of an existing resource
		// instead of creating a new one.
		b, err = ctx.core.GetBinding(rs.schema.typ, rs.name, id, opts)
	} else {
		b, err = ctx.core.RegisterBinding(rs.schema.typ, loom.BindingRequest{
			Name:   rs.name,
			Inputs: inputs,
			Opts:   opts,
		})
	}
	if err != nil {
		fail(diagnosticsFromError(err))
		return
	}
	rs.binding = b

	// Project the registered binding into an object value for downstream
	// expressions. Properties the engine has not yet computed surface as
	// unknowns.
	attrs := map[string]cty.Value{}
	getOutput := func(name string, o *loom.Output) bool {
		v, known, err := o.Value(ctx.cancel)
		if err != nil {
			fail(diagnosticsFromError(err))
			return false
		}
		if !known {
			v = cty.UnknownVal(cty.DynamicPseudoType)
		}
		attrs[name] = v
		return true
	}

	if !getOutput("urn", b.URN()) || !getOutput("id", b.ID()) {
		return
	}
	for _, local := range rs.schema.properties {
		if !getOutput(local, b.Output(local)) {
			return
		}
	}

	rs.value = cty.ObjectVal(attrs)
}

func (rs *resourceState) await(ctx *programContext) (cty.Value, hcl.Diagnostics, bool) {
	state, fulfilled := rs.awaitable.await(ctx.cancel)
	if !fulfilled {
		return cty.Value{}, nil, false
	}
	if state != resourceRegistrationSucceeded {
		return cty.Value{}, rs.diagnostics, false
	}
	return rs.value, nil, true
}
