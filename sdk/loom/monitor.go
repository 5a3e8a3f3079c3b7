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
	"context"

	structpb "github.com/golang/protobuf/ptypes/struct"
)

// RegisterResourceRequest asks the engine to create (or import) a resource
// and begin tracking it in the deployment graph.
type RegisterResourceRequest struct {
	Type                string
	Name                string
	Parent              string
	Custom              bool
	Object              *structpb.Struct
	Provider            string
	Version             string
	Dependencies        []string
	Protect             bool
	DeleteBeforeReplace bool
	IgnoreChanges       []string
	ReplaceOnChanges    []string
	ImportID            string
}

// RegisterResourceResponse carries the engine-assigned identity of the
// resource along with its computed output properties.
type RegisterResourceResponse struct {
	URN    string
	ID     string
	Object *structpb.Struct
}

// ReadResourceRequest asks the engine to look up the state of a resource that
// already exists outside the deployment, identified by id.
type ReadResourceRequest struct {
	Type       string
	Name       string
	Parent     string
	Provider   string
	Version    string
	ID         string
	Properties *structpb.Struct
}

type ReadResourceResponse struct {
	URN        string
	Properties *structpb.Struct
}

// RegisterResourceOutputsRequest records the output values of a component
// resource, most notably the root stack's exports.
type RegisterResourceOutputsRequest struct {
	URN     string
	Outputs *structpb.Struct
}

// ResourceMonitor is the engine endpoint that services resource
// registrations. Its ordering, concurrency, and failure semantics belong to
// the engine; the SDK issues one call per binding and consumes the response.
type ResourceMonitor interface {
	RegisterResource(ctx context.Context, req *RegisterResourceRequest) (*RegisterResourceResponse, error)
	ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResponse, error)
	RegisterResourceOutputs(ctx context.Context, req *RegisterResourceOutputsRequest) error
}

// LogSeverity is the severity of an engine log message.
type LogSeverity int

const (
	LogDebug   LogSeverity = 0
	LogInfo    LogSeverity = 1
	LogWarning LogSeverity = 2
	LogError   LogSeverity = 3
)

type LogRequest struct {
	Severity LogSeverity
	Message  string
	URN      string
}

// Engine is the engine endpoint that carries the diagnostic log stream.
type Engine interface {
	Log(ctx context.Context, req *LogRequest) error
}
