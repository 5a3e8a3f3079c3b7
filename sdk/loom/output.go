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

	"github.com/zclconf/go-cty/cty"
)

// Output is the future value of a single engine-computed property. The
// runtime creates outputs in the pending state at binding construction time;
// the engine's registration response fulfills them. An output is never
// computed locally.
type Output struct {
	*awaitable

	binding *Binding

	value cty.Value
	known bool
	err   error
}

func newOutput(binding *Binding) *Output {
	return &Output{awaitable: newAwaitable(), binding: binding}
}

// resolvedOutput returns an output that is already fulfilled with the given
// value.
func resolvedOutput(v cty.Value, known bool) *Output {
	o := &Output{awaitable: newAwaitable(), value: v, known: known}
	o.awaitable.fulfill(awaitableResolved)
	return o
}

func (o *Output) resolve(v cty.Value, known bool) {
	o.mutex.Lock()
	o.value, o.known = v, known
	o.mutex.Unlock()
	o.fulfill(awaitableResolved)
}

func (o *Output) reject(err error) {
	o.mutex.Lock()
	o.err = err
	o.mutex.Unlock()
	o.fulfill(awaitableRejected)
}

// Value blocks until the output is fulfilled and returns its value. The
// second return value is false when the value is not known, which happens
// during dry-run planning. Rejections surface as errors.
func (o *Output) Value(ctx context.Context) (cty.Value, bool, error) {
	if !o.await(ctx) {
		o.mutex.Lock()
		defer o.mutex.Unlock()
		if o.err != nil {
			return cty.Value{}, false, o.err
		}
		if err := ctx.Err(); err != nil {
			return cty.Value{}, false, err
		}
		return cty.Value{}, false, nil
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.value, o.known, nil
}
