// Copyright 2019-2020, Loomstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loom

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// BindingType describes one resource type to the runtime: its engine type
// token, the output-only properties the engine computes for it, and the
// naming table that translates between local and wire property names. Values
// of this type are produced by the binding generator, one per resource type.
type BindingType struct {
	// Token is the fully qualified engine type token, e.g. "example::Component".
	Token string

	// Outputs lists the declared output-only properties by wire name.
	Outputs []string

	// Table is the local/wire naming bijection for the type. Nil means the
	// two conventions coincide.
	Table *PropertyTable

	// Component marks a purely logical resource that aggregates others
	// instead of mapping to a provider object.
	Component bool
}

// Binding is a typed handle for one declared instance of an externally
// managed resource. After construction it holds no mutable program state:
// the engine fills in its output properties asynchronously, and reads are
// pure projections of that engine-managed store.
type Binding struct {
	typ  *BindingType
	name string

	urn *Output
	id  *Output

	mutex    sync.Mutex
	outputs  map[string]*Output
	resolved bool
}

func newBinding(typ *BindingType, name string) *Binding {
	b := &Binding{typ: typ, name: name, outputs: map[string]*Output{}}
	b.urn = newOutput(b)
	b.id = newOutput(b)
	for _, wire := range typ.Outputs {
		b.outputs[wire] = newOutput(b)
	}
	return b
}

// Name returns the binding's logical name, its stable identity within the
// deployment.
func (b *Binding) Name() string { return b.name }

// Type returns the binding's type descriptor.
func (b *Binding) Type() *BindingType { return b.typ }

// URN returns the engine-assigned universal resource name.
func (b *Binding) URN() *Output { return b.urn }

// ID returns the provider-assigned id. It is unknown during planning.
func (b *Binding) ID() *Output { return b.id }

// Output returns the future for the output property with the given local
// name. The lookup happens under the property's wire name regardless of the
// local spelling; names without a table entry are used as-is.
func (b *Binding) Output(local string) *Output {
	wire := b.typ.Table.Wire(local)

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if o, ok := b.outputs[wire]; ok {
		return o
	}
	if b.resolved {
		return resolvedOutput(cty.NullVal(cty.DynamicPseudoType), true)
	}
	o := newOutput(b)
	b.outputs[wire] = o
	return o
}

// pending reports whether the binding is still awaiting its registration
// response.
func (b *Binding) pending() bool {
	return b.urn.pending()
}

func (b *Binding) resolveOutputs(props PropertyMap, dryRun bool) {
	b.mutex.Lock()
	resolved := make(map[string]*Output, len(b.outputs))
	for wire, o := range b.outputs {
		resolved[wire] = o
	}
	for wire := range props {
		if _, ok := resolved[wire]; !ok {
			o := newOutput(b)
			b.outputs[wire] = o
			resolved[wire] = o
		}
	}
	b.resolved = true
	b.mutex.Unlock()

	for wire, o := range resolved {
		v, ok := props[wire]
		switch {
		case !ok && dryRun:
			o.resolve(cty.UnknownVal(cty.DynamicPseudoType), false)
		case !ok:
			o.resolve(cty.NullVal(cty.DynamicPseudoType), true)
		case !v.IsNull() && !v.IsKnown():
			o.resolve(v, false)
		default:
			o.resolve(v, true)
		}
	}
}

func (b *Binding) reject(err error) {
	b.mutex.Lock()
	b.resolved = true
	outputs := make([]*Output, 0, len(b.outputs))
	for _, o := range b.outputs {
		outputs = append(outputs, o)
	}
	b.mutex.Unlock()

	b.urn.reject(err)
	b.id.reject(err)
	for _, o := range outputs {
		o.reject(err)
	}
}

// BindingRequest carries the caller-supplied arguments of one binding
// construction.
type BindingRequest struct {
	// Name is the user-chosen logical name of the binding.
	Name string

	// LegacyName is the deprecated spelling of Name kept for source
	// compatibility with older generated code. Supplying it emits a warning
	// and overrides Name.
	LegacyName string

	// Inputs is the caller-supplied input property bag, keyed by local name.
	Inputs PropertyMap

	// Props is an explicit pre-filled property bag, keyed by wire name. It is
	// only valid together with an adopt-id in the options.
	Props PropertyMap

	// Opts must be a *ResourceOptions or nil.
	Opts interface{}
}

// RegisterBinding validates and normalizes the request, then registers a new
// binding with the engine under the type's token. The registration call is
// issued asynchronously: the returned binding is in the pending state and its
// outputs resolve when the engine responds. This is the construction path's
// only side effect.
func (ctx *Context) RegisterBinding(typ *BindingType, req BindingRequest) (*Binding, error) {
	if typ == nil || typ.Token == "" {
		return nil, errors.New("binding type token cannot be empty")
	}

	name := req.Name
	if req.LegacyName != "" {
		ctx.Log.Warningf("explicit use of LegacyName is deprecated, use Name instead (resource %q)", req.LegacyName)
		name = req.LegacyName
	}
	if name == "" {
		return nil, errors.New("binding name cannot be empty")
	}

	var opts *ResourceOptions
	switch o := req.Opts.(type) {
	case nil:
		opts = &ResourceOptions{}
	case *ResourceOptions:
		// Copy so that stamping defaults never mutates the caller's struct.
		opts = MergeOptions(o, nil)
	default:
		return nil, &InvalidOptionsTypeError{Got: req.Opts}
	}

	if opts.Version == "" {
		opts.Version = Version
	}
	if opts.Parent == nil {
		opts.Parent = ctx.stack
	}

	if opts.ID == "" {
		// Create branch: an explicit pre-filled bag makes no sense here.
		if req.Props != nil {
			return nil, &InvalidPropsWithoutIDError{Name: name}
		}
	} else if req.Props == nil {
		req.Props = PropertyMap{}
	}

	if ctx.monitor == nil {
		return nil, errors.New("no resource monitor is available to service the registration")
	}

	b := newBinding(typ, name)

	if err := ctx.beginRPC(); err != nil {
		return nil, err
	}

	go func() {
		var err error
		defer func() {
			if err != nil {
				b.reject(err)
			}
			ctx.endRPC(err)
		}()
		err = ctx.registerBinding(b, opts, req)
	}()

	return b, nil
}

// GetBinding returns a binding for an existing resource, identified by id.
// The id is merged over the supplied options (id takes precedence) and the
// constructor is invoked with an explicit empty property bag; no engine call
// happens synchronously beyond that delegation.
func (ctx *Context) GetBinding(typ *BindingType, name, id string, opts *ResourceOptions) (*Binding, error) {
	if id == "" {
		return nil, errors.New("binding id is required for lookup and cannot be empty")
	}
	merged := MergeOptions(opts, &ResourceOptions{ID: id})
	return ctx.RegisterBinding(typ, BindingRequest{Name: name, Props: PropertyMap{}, Opts: merged})
}

// registerBinding runs on the registration goroutine. It prepares the wire
// property bag and issues the one registration (or read, for adopt-existing)
// call to the monitor.
func (ctx *Context) registerBinding(b *Binding, opts *ResourceOptions, req BindingRequest) error {
	// The parent's and dependencies' URNs must be known before this binding
	// can be registered beneath them.
	var parentURN string
	if opts.Parent != nil {
		v, known, err := opts.Parent.URN().Value(ctx.ctx)
		if err != nil {
			return errors.Wrap(err, "awaiting parent URN")
		}
		if known {
			parentURN = v.AsString()
		}
	}

	depURNs := map[string]bool{}
	awaitDep := func(dep *Binding) error {
		v, known, err := dep.URN().Value(ctx.ctx)
		if err != nil {
			return err
		}
		if known {
			depURNs[v.AsString()] = true
		}
		return nil
	}
	for _, dep := range opts.DependsOn {
		if err := awaitDep(dep); err != nil {
			return errors.Wrap(err, "awaiting dependency URN")
		}
	}

	if opts.ID != "" {
		return ctx.readBinding(b, opts, req.Props, parentURN)
	}

	// Build the submitted bag: translate caller inputs to wire names, resolve
	// deferred values, then seed every declared output property so the engine
	// knows to populate it.
	inputs := PropertyMap{}
	for local, v := range req.Inputs {
		inputs[b.typ.Table.Wire(local)] = v
	}
	resolved, implicitDeps, err := awaitProperties(ctx.ctx, inputs)
	if err != nil {
		return errors.Wrap(err, "resolving input properties")
	}
	for _, dep := range implicitDeps {
		if err := awaitDep(dep); err != nil {
			return errors.Wrap(err, "awaiting dependency URN")
		}
	}
	for _, wire := range b.typ.Outputs {
		if _, has := resolved[wire]; !has {
			resolved[wire] = cty.NullVal(cty.DynamicPseudoType)
		}
	}

	object, err := marshalProperties(resolved, marshalOptions{KeepUnknowns: ctx.DryRun()})
	if err != nil {
		return err
	}

	deps := make([]string, 0, len(depURNs))
	for urn := range depURNs {
		deps = append(deps, urn)
	}

	ctx.Log.Debugf("RegisterResource(%s, %s): RPC call being made", b.typ.Token, b.name)
	resp, err := ctx.monitor.RegisterResource(ctx.ctx, &RegisterResourceRequest{
		Type:                b.typ.Token,
		Name:                b.name,
		Parent:              parentURN,
		Custom:              !b.typ.Component,
		Object:              object,
		Provider:            opts.Provider,
		Version:             opts.Version,
		Dependencies:        deps,
		Protect:             opts.Protect,
		DeleteBeforeReplace: opts.DeleteBeforeReplace,
		IgnoreChanges:       opts.IgnoreChanges,
		ReplaceOnChanges:    opts.ReplaceOnChanges,
		ImportID:            opts.Import,
	})
	if err != nil {
		return errors.Wrapf(err, "registering resource %s", b.name)
	}

	b.urn.resolve(cty.StringVal(resp.URN), true)
	if resp.ID != "" {
		b.id.resolve(cty.StringVal(resp.ID), true)
	} else {
		b.id.resolve(cty.UnknownVal(cty.String), false)
	}
	b.resolveOutputs(unmarshalProperties(resp.Object), ctx.DryRun())
	return nil
}

// readBinding services the adopt-existing branch through the engine's read
// path.
func (ctx *Context) readBinding(b *Binding, opts *ResourceOptions, props PropertyMap, parentURN string) error {
	state, err := marshalProperties(props, marshalOptions{KeepUnknowns: ctx.DryRun()})
	if err != nil {
		return err
	}

	ctx.Log.Debugf("ReadResource(%s, %s): RPC call being made", b.typ.Token, b.name)
	resp, err := ctx.monitor.ReadResource(ctx.ctx, &ReadResourceRequest{
		Type:       b.typ.Token,
		Name:       b.name,
		Parent:     parentURN,
		Provider:   opts.Provider,
		Version:    opts.Version,
		ID:         opts.ID,
		Properties: state,
	})
	if err != nil {
		return errors.Wrapf(err, "reading resource %s", b.name)
	}

	b.urn.resolve(cty.StringVal(resp.URN), true)
	b.id.resolve(cty.StringVal(opts.ID), true)
	b.resolveOutputs(unmarshalProperties(resp.Properties), ctx.DryRun())
	return nil
}
