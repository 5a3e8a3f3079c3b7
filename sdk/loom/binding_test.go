package loom

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var componentTestType = &BindingType{
	Token:   "example::Component",
	Outputs: []string{"provider", "securityGroup", "storageClasses"},
	Table: NewPropertyTable(map[string]string{
		"security_group":  "securityGroup",
		"storage_classes": "storageClasses",
	}),
}

type testMocks struct {
	NewResourceF func(typeToken, name string, inputs *structpb.Struct,
		provider, id string) (string, *structpb.Struct, error)

	calls int32
}

func (m *testMocks) NewResource(typeToken, name string, inputs *structpb.Struct,
	provider, id string) (string, *structpb.Struct, error) {

	atomic.AddInt32(&m.calls, 1)
	if m.NewResourceF == nil {
		return "", nil, nil
	}
	return m.NewResourceF(typeToken, name, inputs, provider, id)
}

func TestRegisterBindingResolvesOutputs(t *testing.T) {
	mocks := &testMocks{
		NewResourceF: func(typeToken, name string, inputs *structpb.Struct,
			provider, id string) (string, *structpb.Struct, error) {

			assert.Equal(t, "example::Component", typeToken)
			assert.Equal(t, "comp", name)

			state, err := marshalProperties(PropertyMap{
				"securityGroup": cty.StringVal("sg-0"),
				"storageClasses": cty.ObjectVal(map[string]cty.Value{
					"standard": cty.StringVal("gp2"),
				}),
			}, marshalOptions{})
			require.NoError(t, err)
			return "i-1234", state, nil
		},
	}

	err := RunErr(func(ctx *Context) error {
		b, err := ctx.RegisterBinding(componentTestType, BindingRequest{Name: "comp"})
		require.NoError(t, err)

		// Accessors use local names; the lookup happens under wire names.
		v, known, err := b.Output("security_group").Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "sg-0", v.AsString())

		v, known, err = b.Output("storage_classes").Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "gp2", v.GetAttr("standard").AsString())

		v, known, err = b.ID().Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "i-1234", v.AsString())

		// Properties the engine never produced resolve to null after
		// registration completes.
		v, known, err = b.Output("nonexistent").Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.True(t, v.IsNull())

		return nil
	}, WithMocks("proj", "dev", mocks))
	assert.NoError(t, err)
}

func TestRegisterBindingInvalidOptionsType(t *testing.T) {
	mocks := &testMocks{}

	err := RunErr(func(ctx *Context) error {
		_, err := ctx.RegisterBinding(componentTestType, BindingRequest{
			Name: "comp",
			Opts: 42,
		})
		require.Error(t, err)
		assert.True(t, IsInvalidOptionsType(err))
		return nil
	}, WithMocks("proj", "dev", mocks))
	assert.NoError(t, err)

	// Validation fails before any engine traffic happens.
	assert.Zero(t, atomic.LoadInt32(&mocks.calls))
}

func TestRegisterBindingPropsRequireID(t *testing.T) {
	mocks := &testMocks{}

	err := RunErr(func(ctx *Context) error {
		_, err := ctx.RegisterBinding(componentTestType, BindingRequest{
			Name:  "comp",
			Props: PropertyMap{"securityGroup": cty.StringVal("sg-0")},
		})
		require.Error(t, err)
		assert.True(t, IsInvalidPropsWithoutID(err))
		assert.Contains(t, err.Error(), "comp")
		return nil
	}, WithMocks("proj", "dev", mocks))
	assert.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&mocks.calls))
}

func TestGetBindingAdoptsExisting(t *testing.T) {
	mocks := &testMocks{
		NewResourceF: func(typeToken, name string, inputs *structpb.Struct,
			provider, id string) (string, *structpb.Struct, error) {

			assert.Equal(t, "i-999", id)
			state, err := marshalProperties(PropertyMap{
				"securityGroup": cty.StringVal("sg-existing"),
			}, marshalOptions{})
			require.NoError(t, err)
			return id, state, nil
		},
	}

	err := RunErr(func(ctx *Context) error {
		b, err := ctx.GetBinding(componentTestType, "comp", "i-999", nil)
		require.NoError(t, err)

		v, known, err := b.ID().Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "i-999", v.AsString())

		v, known, err = b.Output("security_group").Value(context.Background())
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "sg-existing", v.AsString())
		return nil
	}, WithMocks("proj", "dev", mocks))
	assert.NoError(t, err)
}

func TestGetBindingRequiresID(t *testing.T) {
	err := RunErr(func(ctx *Context) error {
		_, err := ctx.GetBinding(componentTestType, "comp", "", nil)
		assert.Error(t, err)
		return nil
	}, WithMocks("proj", "dev", &testMocks{}))
	assert.NoError(t, err)
}

func TestRegisterBindingLegacyName(t *testing.T) {
	err := RunErr(func(ctx *Context) error {
		b, err := ctx.RegisterBinding(componentTestType, BindingRequest{
			Name:       "new-name",
			LegacyName: "old-name",
		})
		require.NoError(t, err)

		// The deprecated spelling wins, with a warning.
		assert.Equal(t, "old-name", b.Name())
		return nil
	}, WithMocks("proj", "dev", &testMocks{}))
	assert.NoError(t, err)
}

// captureMonitor records every request so tests can inspect the submitted
// wire form directly.
type captureMonitor struct {
	mutex     sync.Mutex
	registers []*RegisterResourceRequest
}

func (m *captureMonitor) RegisterResource(ctx context.Context,
	req *RegisterResourceRequest) (*RegisterResourceResponse, error) {

	m.mutex.Lock()
	m.registers = append(m.registers, req)
	m.mutex.Unlock()

	return &RegisterResourceResponse{
		URN:    "urn:loom:dev::proj::" + req.Type + "::" + req.Name,
		ID:     "id-1",
		Object: req.Object,
	}, nil
}

func (m *captureMonitor) ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResponse, error) {
	return &ReadResourceResponse{
		URN:        "urn:loom:dev::proj::" + req.Type + "::" + req.Name,
		Properties: req.Properties,
	}, nil
}

func (m *captureMonitor) RegisterResourceOutputs(ctx context.Context, req *RegisterResourceOutputsRequest) error {
	return nil
}

func TestRegisterBindingRequestShape(t *testing.T) {
	monitor := &captureMonitor{}

	ctx, err := NewContext(context.Background(), RunInfo{Project: "proj", Stack: "dev"})
	require.NoError(t, err)
	ctx.monitor = monitor

	err = RunWithContext(ctx, func(ctx *Context) error {
		b, err := ctx.RegisterBinding(componentTestType, BindingRequest{
			Name: "comp",
			Inputs: PropertyMap{
				"metadata": cty.StringVal("v1"),
			},
		})
		if err != nil {
			return err
		}
		_, _, err = b.URN().Value(context.Background())
		return err
	})
	require.NoError(t, err)

	require.Len(t, monitor.registers, 2)

	var stackReq, compReq *RegisterResourceRequest
	for _, req := range monitor.registers {
		if req.Type == StackType {
			stackReq = req
		} else {
			compReq = req
		}
	}
	require.NotNil(t, stackReq)
	require.NotNil(t, compReq)

	// The root stack is a component; everything else defaults to custom and
	// is parented to the stack.
	assert.False(t, stackReq.Custom)
	assert.Equal(t, "proj-dev", stackReq.Name)
	assert.True(t, compReq.Custom)
	assert.Equal(t, "urn:loom:dev::proj::"+StackType+"::proj-dev", compReq.Parent)

	// The SDK version is stamped in when the caller doesn't pin one.
	assert.Equal(t, Version, compReq.Version)

	// Inputs are present, and every declared output is seeded with a null
	// placeholder so the engine knows to populate it.
	fields := compReq.Object.GetFields()
	assert.Equal(t, "v1", fields["metadata"].GetStringValue())
	for _, wire := range componentTestType.Outputs {
		v, has := fields[wire]
		require.True(t, has, "missing placeholder for %s", wire)
		_, isNull := v.Kind.(*structpb.Value_NullValue)
		assert.True(t, isNull, "placeholder for %s should be null", wire)
	}
}

func TestRegisterBindingVersionPin(t *testing.T) {
	monitor := &captureMonitor{}

	ctx, err := NewContext(context.Background(), RunInfo{Project: "proj", Stack: "dev"})
	require.NoError(t, err)
	ctx.monitor = monitor

	err = RunWithContext(ctx, func(ctx *Context) error {
		b, err := ctx.RegisterBinding(componentTestType, BindingRequest{
			Name: "comp",
			Opts: &ResourceOptions{Version: "9.9.9"},
		})
		if err != nil {
			return err
		}
		_, _, err = b.URN().Value(context.Background())
		return err
	})
	require.NoError(t, err)

	last := monitor.registers[len(monitor.registers)-1]
	assert.Equal(t, "9.9.9", last.Version)
}
