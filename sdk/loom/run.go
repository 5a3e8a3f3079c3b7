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
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	multierror "github.com/hashicorp/go-multierror"
)

// RunInfo contains all the metadata about a run request.
type RunInfo struct {
	Project     string
	Stack       string
	Config      map[string]string
	Parallel    int
	DryRun      bool
	MonitorAddr string
	EngineAddr  string
	Mocks       MockResourceMonitor
}

// Environment variables consumed by getEnvInfo.
const (
	EnvProject  = "LOOM_PROJECT"
	EnvStack    = "LOOM_STACK"
	EnvConfig   = "LOOM_CONFIG"
	EnvParallel = "LOOM_PARALLEL"
	EnvDryRun   = "LOOM_DRY_RUN"
	EnvMonitor  = "LOOM_MONITOR"
	EnvEngine   = "LOOM_ENGINE"
)

// StackType is the type token of the root stack binding everything else is
// parented to.
const StackType = "loom:loom:Stack"

var stackBindingType = &BindingType{Token: StackType, Component: true}

// getEnvInfo reads the run request out of the environment. This is a lame
// contract with the host process, but it keeps program boilerplate to a
// minimum.
func getEnvInfo() RunInfo {
	dryRun, _ := strconv.ParseBool(os.Getenv(EnvDryRun))
	parallel, _ := strconv.Atoi(os.Getenv(EnvParallel))

	var config map[string]string
	if cfg := os.Getenv(EnvConfig); cfg != "" {
		_ = json.Unmarshal([]byte(cfg), &config)
	}

	return RunInfo{
		Project:     os.Getenv(EnvProject),
		Stack:       os.Getenv(EnvStack),
		Config:      config,
		Parallel:    parallel,
		DryRun:      dryRun,
		MonitorAddr: os.Getenv(EnvMonitor),
		EngineAddr:  os.Getenv(EnvEngine),
	}
}

// A RunOption is used to control the behavior of Run and RunErr.
type RunOption func(*RunInfo)

// RunFunc executes the body of a deployment program. It may register
// bindings using the supplied context; any non-nil return value is
// interpreted as a program error.
type RunFunc func(ctx *Context) error

// Run executes the body of a deployment program, connecting back to the
// engine using gRPC. If the program fails the process terminates.
func Run(body RunFunc, opts ...RunOption) {
	if err := RunErr(body, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "error: program failed: %v\n", err)
		os.Exit(1)
	}
}

// RunErr executes the body of a deployment program and reports its error,
// if any.
func RunErr(body RunFunc, opts ...RunOption) error {
	info := getEnvInfo()
	for _, o := range opts {
		o(&info)
	}

	ctx, err := NewContext(context.Background(), info)
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()

	return RunWithContext(ctx, body)
}

// RunWithContext runs the program body against an existing context,
// registering the root stack binding first and the stack outputs last.
func RunWithContext(ctx *Context, body RunFunc) error {
	info := ctx.info

	stack, err := ctx.RegisterBinding(stackBindingType, BindingRequest{
		Name: fmt.Sprintf("%s-%s", info.Project, info.Stack),
	})
	if err != nil {
		return err
	}
	ctx.stack = stack

	var result error
	if err := body(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if err := ctx.registerStackOutputs(); err != nil {
		result = multierror.Append(result, err)
	}

	// Ensure all outstanding registrations have completed before returning,
	// and refuse any new ones.
	ctx.waitForRPCs()
	if ctx.rpcError != nil {
		result = multierror.Append(result, ctx.rpcError)
	}

	return result
}
