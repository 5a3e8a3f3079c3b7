// *** WARNING: this file was generated by loomgen. ***
// *** Do not edit by hand unless you're certain you know what you are doing! ***

package example

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/loomstack/loom/sdk/loom"
)

var componentType = &loom.BindingType{
	Token:   "example::Component",
	Outputs: []string{"provider", "securityGroup", "storageClasses"},
	Table:   componentTable,
}

// Component is a typed handle for an example::Component resource.
type Component struct {
	*loom.Binding
}

// ComponentArgs is the set of arguments for constructing a Component.
type ComponentArgs struct {
	// Metadata attaches object metadata to the component's derived resources.
	Metadata cty.Value
}

// NewComponent registers a new Component with the given unique name,
// arguments, and options.
func NewComponent(ctx *loom.Context, name string, args *ComponentArgs,
	opts *loom.ResourceOptions) (*Component, error) {

	if args == nil {
		args = &ComponentArgs{}
	}

	inputs := loom.PropertyMap{}
	if args.Metadata != cty.NilVal {
		inputs["metadata"] = args.Metadata
	}

	b, err := ctx.RegisterBinding(componentType, loom.BindingRequest{
		Name:   name,
		Inputs: inputs,
		Opts:   opts,
	})
	if err != nil {
		return nil, err
	}
	return &Component{Binding: b}, nil
}

// GetComponent looks up an existing Component resource's state with the given
// name, id, and optional extra options used to qualify the lookup.
func GetComponent(ctx *loom.Context, name, id string, opts *loom.ResourceOptions) (*Component, error) {
	b, err := ctx.GetBinding(componentType, name, id, opts)
	if err != nil {
		return nil, err
	}
	return &Component{Binding: b}, nil
}

// Provider is the provider instance the component's derived resources run
// under.
func (c *Component) Provider() *loom.Output {
	return c.Output("provider")
}

// SecurityGroup is the security group created for the component.
func (c *Component) SecurityGroup() *loom.Output {
	return c.Output("security_group")
}

// StorageClasses maps storage class names to the classes created for the
// component.
func (c *Component) StorageClasses() *loom.Output {
	return c.Output("storage_classes")
}
