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
	opentracing "github.com/opentracing/opentracing-go"
	"google.golang.org/grpc"
)

// The monitor protocol is a plain gRPC surface whose messages are protobuf
// Struct values; requests are encoded field-by-field below. This keeps the
// SDK decoupled from the engine's own message definitions.
const (
	methodRegisterResource        = "/loomrpc.ResourceMonitor/RegisterResource"
	methodReadResource            = "/loomrpc.ResourceMonitor/ReadResource"
	methodRegisterResourceOutputs = "/loomrpc.ResourceMonitor/RegisterResourceOutputs"
	methodEngineLog               = "/loomrpc.Engine/Log"
)

type monitorClient struct {
	conn *grpc.ClientConn
}

func newMonitorClient(conn *grpc.ClientConn) ResourceMonitor {
	return &monitorClient{conn: conn}
}

func (c *monitorClient) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, method)
	defer span.Finish()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	return resp, nil
}

func (c *monitorClient) RegisterResource(ctx context.Context,
	req *RegisterResourceRequest) (*RegisterResourceResponse, error) {

	fields := map[string]*structpb.Value{
		"type":                spbString(req.Type),
		"name":                spbString(req.Name),
		"parent":              spbString(req.Parent),
		"custom":              spbBool(req.Custom),
		"object":              spbStruct(req.Object),
		"provider":            spbString(req.Provider),
		"version":             spbString(req.Version),
		"dependencies":        spbStrings(req.Dependencies),
		"protect":             spbBool(req.Protect),
		"deleteBeforeReplace": spbBool(req.DeleteBeforeReplace),
		"ignoreChanges":       spbStrings(req.IgnoreChanges),
		"replaceOnChanges":    spbStrings(req.ReplaceOnChanges),
		"importId":            spbString(req.ImportID),
	}
	resp, err := c.invoke(ctx, methodRegisterResource, &structpb.Struct{Fields: fields})
	if err != nil {
		return nil, err
	}
	return &RegisterResourceResponse{
		URN:    resp.Fields["urn"].GetStringValue(),
		ID:     resp.Fields["id"].GetStringValue(),
		Object: resp.Fields["object"].GetStructValue(),
	}, nil
}

func (c *monitorClient) ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResponse, error) {
	fields := map[string]*structpb.Value{
		"type":       spbString(req.Type),
		"name":       spbString(req.Name),
		"parent":     spbString(req.Parent),
		"provider":   spbString(req.Provider),
		"version":    spbString(req.Version),
		"id":         spbString(req.ID),
		"properties": spbStruct(req.Properties),
	}
	resp, err := c.invoke(ctx, methodReadResource, &structpb.Struct{Fields: fields})
	if err != nil {
		return nil, err
	}
	return &ReadResourceResponse{
		URN:        resp.Fields["urn"].GetStringValue(),
		Properties: resp.Fields["properties"].GetStructValue(),
	}, nil
}

func (c *monitorClient) RegisterResourceOutputs(ctx context.Context, req *RegisterResourceOutputsRequest) error {
	fields := map[string]*structpb.Value{
		"urn":     spbString(req.URN),
		"outputs": spbStruct(req.Outputs),
	}
	_, err := c.invoke(ctx, methodRegisterResourceOutputs, &structpb.Struct{Fields: fields})
	return err
}

type engineClient struct {
	conn *grpc.ClientConn
}

func newEngineClient(conn *grpc.ClientConn) Engine {
	return &engineClient{conn: conn}
}

func (c *engineClient) Log(ctx context.Context, req *LogRequest) error {
	fields := map[string]*structpb.Value{
		"severity": {Kind: &structpb.Value_NumberValue{NumberValue: float64(req.Severity)}},
		"message":  spbString(req.Message),
		"urn":      spbString(req.URN),
	}
	resp := &structpb.Struct{}
	return c.conn.Invoke(ctx, methodEngineLog, &structpb.Struct{Fields: fields}, resp)
}

func spbString(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func spbBool(b bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: b}}
}

func spbStrings(vals []string) *structpb.Value {
	list := make([]*structpb.Value, len(vals))
	for i, v := range vals {
		list[i] = spbString(v)
	}
	return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: list}}}
}

func spbStruct(s *structpb.Struct) *structpb.Value {
	if s == nil {
		return &structpb.Value{Kind: &structpb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}
	}
	return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: s}}
}
