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
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/zclconf/go-cty/cty"
	"google.golang.org/grpc"
)

// Context handles registration of bindings and exposes metadata about the
// current deployment.
type Context struct {
	ctx   context.Context
	info  RunInfo
	runID string

	monitor     ResourceMonitor
	monitorConn *grpc.ClientConn
	engine      Engine
	engineConn  *grpc.ClientConn

	stack   *Binding
	exports PropertyMap

	rpcs     int
	rpcsDone *sync.Cond
	rpcsLock *sync.Mutex
	rpcError error

	Log Log
}

// NewContext creates a fresh deployment context out of the given metadata,
// connecting to the engine's gRPC endpoints when addresses are present.
func NewContext(ctx context.Context, info RunInfo) (*Context, error) {
	var monitorConn *grpc.ClientConn
	var monitor ResourceMonitor
	if addr := info.MonitorAddr; addr != "" {
		conn, err := grpc.Dial(addr, grpc.WithInsecure())
		if err != nil {
			return nil, errors.Wrap(err, "connecting to resource monitor over RPC")
		}
		monitorConn = conn
		monitor = newMonitorClient(conn)
	}

	var engineConn *grpc.ClientConn
	var engine Engine
	if addr := info.EngineAddr; addr != "" {
		conn, err := grpc.Dial(addr, grpc.WithInsecure())
		if err != nil {
			return nil, errors.Wrap(err, "connecting to engine over RPC")
		}
		engineConn = conn
		engine = newEngineClient(conn)
	}

	if info.Mocks != nil {
		monitor = &mockMonitor{project: info.Project, stack: info.Stack, mocks: info.Mocks}
		engine = &mockEngine{}
	}

	mutex := &sync.Mutex{}
	return &Context{
		ctx:         ctx,
		info:        info,
		runID:       uuid.NewV4().String(),
		monitor:     monitor,
		monitorConn: monitorConn,
		engine:      engine,
		engineConn:  engineConn,
		exports:     PropertyMap{},
		rpcsLock:    mutex,
		rpcsDone:    sync.NewCond(mutex),
		Log:         &logState{engine: engine, ctx: ctx},
	}, nil
}

// Close relinquishes the gRPC connections held by the context.
func (ctx *Context) Close() error {
	var result error
	if ctx.engineConn != nil {
		if err := ctx.engineConn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if ctx.monitorConn != nil {
		if err := ctx.monitorConn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Project returns the current project name.
func (ctx *Context) Project() string { return ctx.info.Project }

// Stack returns the current stack name being deployed into.
func (ctx *Context) Stack() string { return ctx.info.Stack }

// Parallel returns the degree of parallelism the engine is using.
func (ctx *Context) Parallel() int { return ctx.info.Parallel }

// DryRun is true when the program is evaluated for planning rather than for
// a true deployment.
func (ctx *Context) DryRun() bool { return ctx.info.DryRun }

// GetConfig returns the config value for key and whether it exists.
func (ctx *Context) GetConfig(key string) (string, bool) {
	v, ok := ctx.info.Config[key]
	return v, ok
}

// Export records a named stack output. Outputs are registered with the engine
// once the program body completes.
func (ctx *Context) Export(name string, value cty.Value) {
	ctx.exports[name] = value
}

// ExportOutput records a not-yet-resolved value as a stack output.
func (ctx *Context) ExportOutput(name string, o *Output) {
	ctx.exports[name] = OutputVal(o)
}

// beginRPC signals the start of an engine call so that shutdown can
// rendezvous with outstanding work.
func (ctx *Context) beginRPC() error {
	ctx.rpcsLock.Lock()
	defer ctx.rpcsLock.Unlock()

	if ctx.rpcs < 0 {
		return errors.New("deployment has already completed; no further registrations are permitted")
	}
	ctx.rpcs++
	return nil
}

// endRPC signals the completion of an engine call.
func (ctx *Context) endRPC(err error) {
	ctx.rpcsLock.Lock()
	defer ctx.rpcsLock.Unlock()

	if err != nil && ctx.rpcError == nil {
		ctx.rpcError = err
	}
	ctx.rpcs--
	if ctx.rpcs == 0 {
		ctx.rpcsDone.Broadcast()
	}
}

// waitForRPCs blocks until every outstanding engine call has completed, then
// prevents any new ones from starting.
func (ctx *Context) waitForRPCs() {
	ctx.rpcsLock.Lock()
	defer ctx.rpcsLock.Unlock()

	for ctx.rpcs > 0 {
		ctx.rpcsDone.Wait()
	}
	ctx.rpcs = -1
}

// registerStackOutputs submits the accumulated exports against the root stack
// binding.
func (ctx *Context) registerStackOutputs() error {
	if ctx.stack == nil || ctx.monitor == nil {
		return nil
	}

	urnVal, _, err := ctx.stack.URN().Value(ctx.ctx)
	if err != nil {
		return err
	}

	resolved, _, err := awaitProperties(ctx.ctx, ctx.exports)
	if err != nil {
		return err
	}
	outs, err := marshalProperties(resolved, marshalOptions{KeepUnknowns: ctx.DryRun()})
	if err != nil {
		return err
	}

	return ctx.monitor.RegisterResourceOutputs(ctx.ctx, &RegisterResourceOutputsRequest{
		URN:     urnVal.AsString(),
		Outputs: outs,
	})
}
