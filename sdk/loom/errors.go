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
	"fmt"

	"github.com/pkg/errors"
)

// InvalidOptionsTypeError indicates that a value other than *ResourceOptions
// was supplied where resource options were expected.
type InvalidOptionsTypeError struct {
	Got interface{}
}

func (e *InvalidOptionsTypeError) Error() string {
	return fmt.Sprintf("expected resource options to be a *loom.ResourceOptions, got %T", e.Got)
}

// IsInvalidOptionsType reports whether err (or its cause) is an
// InvalidOptionsTypeError.
func IsInvalidOptionsType(err error) bool {
	_, ok := errors.Cause(err).(*InvalidOptionsTypeError)
	return ok
}

// InvalidPropsWithoutIDError indicates that an explicit property bag was
// supplied for a binding whose options carry no adopt-id. Pre-filled bags are
// only meaningful when looking up an existing resource.
type InvalidPropsWithoutIDError struct {
	Name string
}

func (e *InvalidPropsWithoutIDError) Error() string {
	return fmt.Sprintf(
		"resource %q: an explicit property bag is only valid when passed in combination with a valid id", e.Name)
}

// IsInvalidPropsWithoutID reports whether err (or its cause) is an
// InvalidPropsWithoutIDError.
func IsInvalidPropsWithoutID(err error) bool {
	_, ok := errors.Cause(err).(*InvalidPropsWithoutIDError)
	return ok
}
