package program

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"

	"github.com/loomstack/loom/sdk/loom"
)

// propertySpec describes one resource property as it appears in a package
// schema document. Name is the local spelling; Wire, when present, is the
// engine-side spelling it translates to.
type propertySpec struct {
	Name     string `json:"name"`
	Wire     string `json:"wire,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

type resourceSpec struct {
	Token   string         `json:"token"`
	Inputs  []propertySpec `json:"inputs"`
	Outputs []propertySpec `json:"outputs"`
}

type packageSpec struct {
	Name      string         `json:"name"`
	Resources []resourceSpec `json:"resources"`
}

type inputSchema struct {
	typ      cty.Type
	required bool
}

type resourceSchema struct {
	typ    *loom.BindingType
	inputs map[string]inputSchema

	// properties lists every declared property by local name, inputs first.
	properties []string
}

type packageSchema struct {
	name      string
	resources map[string]*resourceSchema
}

func decomposeToken(tok string, subject hcl.Range) (string, string, string, hcl.Diagnostics) {
	components := strings.Split(tok, ":")
	if len(components) != 3 {
		return "", "", "", hcl.Diagnostics{malformedToken(tok, subject)}
	}
	return components[0], components[1], components[2], nil
}

func loadSchema(pkgName string) (*packageSchema, error) {
	f, err := os.Open("./" + pkgName + ".json")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var spec packageSpec
	if err := json.NewDecoder(f).Decode(&spec); err != nil {
		return nil, errors.Wrapf(err, "decoding schema for package %s", pkgName)
	}

	return importSpec(spec)
}

func importSpec(spec packageSpec) (*packageSchema, error) {
	resources := map[string]*resourceSchema{}
	var errs []error
	for _, r := range spec.Resources {
		if _, has := resources[r.Token]; has {
			errs = append(errs, errors.Errorf("duplicate resource token %s", r.Token))
			continue
		}
		rs, err := importResourceSpec(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resources[r.Token] = rs
	}
	if len(errs) != 0 {
		return nil, multierr.Combine(errs...)
	}
	return &packageSchema{name: spec.Name, resources: resources}, nil
}

// importResourceSpec validates one resource's schema and compiles it into a
// binding type plus a typed input table. Name translations must be bijective:
// each local name maps to one wire name and vice versa.
func importResourceSpec(r resourceSpec) (*resourceSchema, error) {
	var errs []error

	names, wires := map[string]string{}, map[string]string{}
	addName := func(p propertySpec) {
		if p.Wire == "" || p.Wire == p.Name {
			return
		}
		if prev, has := names[p.Name]; has && prev != p.Wire {
			errs = append(errs, errors.Errorf(
				"%s: property %q maps to both %q and %q", r.Token, p.Name, prev, p.Wire))
			return
		}
		if prev, has := wires[p.Wire]; has && prev != p.Name {
			errs = append(errs, errors.Errorf(
				"%s: wire name %q is mapped from both %q and %q", r.Token, p.Wire, prev, p.Name))
			return
		}
		names[p.Name], wires[p.Wire] = p.Wire, p.Name
	}

	inputs := map[string]inputSchema{}
	var properties []string
	seen := map[string]bool{}
	for _, p := range r.Inputs {
		if _, has := inputs[p.Name]; has {
			errs = append(errs, errors.Errorf("%s: duplicate input %q", r.Token, p.Name))
			continue
		}
		t, err := parseTypeString(p.Type)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "%s: input %q", r.Token, p.Name))
			continue
		}
		inputs[p.Name] = inputSchema{typ: t, required: p.Required}
		addName(p)
		if !seen[p.Name] {
			properties, seen[p.Name] = append(properties, p.Name), true
		}
	}

	var outWires []string
	for _, p := range r.Outputs {
		addName(p)
		wire := p.Wire
		if wire == "" {
			wire = p.Name
		}
		outWires = append(outWires, wire)
		if !seen[p.Name] {
			properties, seen[p.Name] = append(properties, p.Name), true
		}
	}

	if len(errs) != 0 {
		return nil, multierr.Combine(errs...)
	}

	var table *loom.PropertyTable
	if len(names) > 0 {
		table = loom.NewPropertyTable(names)
	}
	return &resourceSchema{
		typ: &loom.BindingType{
			Token:   r.Token,
			Outputs: outWires,
			Table:   table,
		},
		inputs:     inputs,
		properties: properties,
	}, nil
}

func parseTypeString(s string) (cty.Type, error) {
	switch {
	case s == "" || s == "any":
		return cty.DynamicPseudoType, nil
	case s == "bool":
		return cty.Bool, nil
	case s == "int" || s == "number":
		return cty.Number, nil
	case s == "string":
		return cty.String, nil
	case strings.HasPrefix(s, "list(") && strings.HasSuffix(s, ")"):
		et, err := parseTypeString(s[len("list(") : len(s)-1])
		if err != nil {
			return cty.Type{}, err
		}
		return cty.List(et), nil
	case strings.HasPrefix(s, "map(") && strings.HasSuffix(s, ")"):
		et, err := parseTypeString(s[len("map(") : len(s)-1])
		if err != nil {
			return cty.Type{}, err
		}
		return cty.Map(et), nil
	default:
		return cty.Type{}, errors.Errorf("unsupported type %q", s)
	}
}
