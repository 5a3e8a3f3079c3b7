package loom

import (
	"fmt"

	structpb "github.com/golang/protobuf/ptypes/struct"
	"golang.org/x/net/context"
)

// MockResourceMonitor lets tests stand in for the engine. NewResource
// receives the submitted bag and returns the id and output state the mock
// engine computes for it.
type MockResourceMonitor interface {
	NewResource(typeToken, name string, inputs *structpb.Struct,
		provider, id string) (string, *structpb.Struct, error)
}

// WithMocks returns a RunOption that runs the program against a mock engine.
func WithMocks(project, stack string, mocks MockResourceMonitor) RunOption {
	return func(info *RunInfo) {
		info.Project, info.Stack, info.Mocks = project, stack, mocks
	}
}

type mockMonitor struct {
	project string
	stack   string
	mocks   MockResourceMonitor
}

func (m *mockMonitor) newURN(parent, typ, name string) string {
	return fmt.Sprintf("urn:loom:%s::%s::%s::%s", m.stack, m.project, typ, name)
}

func (m *mockMonitor) RegisterResource(ctx context.Context,
	req *RegisterResourceRequest) (*RegisterResourceResponse, error) {

	urn := m.newURN(req.Parent, req.Type, req.Name)
	if !req.Custom {
		return &RegisterResourceResponse{URN: urn}, nil
	}

	id, state, err := m.mocks.NewResource(req.Type, req.Name, req.Object, req.Provider, req.ImportID)
	if err != nil {
		return nil, err
	}
	return &RegisterResourceResponse{URN: urn, ID: id, Object: state}, nil
}

func (m *mockMonitor) ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResponse, error) {
	_, state, err := m.mocks.NewResource(req.Type, req.Name, req.Properties, req.Provider, req.ID)
	if err != nil {
		return nil, err
	}
	return &ReadResourceResponse{
		URN:        m.newURN(req.Parent, req.Type, req.Name),
		Properties: state,
	}, nil
}

func (m *mockMonitor) RegisterResourceOutputs(ctx context.Context, req *RegisterResourceOutputsRequest) error {
	return nil
}

type mockEngine struct{}

func (m *mockEngine) Log(ctx context.Context, req *LogRequest) error {
	return nil
}
