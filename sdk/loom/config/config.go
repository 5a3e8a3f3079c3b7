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

// Package config provides typed access to a deployment's configuration
// values.
package config

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/loomstack/loom/sdk/loom"
)

// Get loads an optional configuration value by its key, or returns "" if it
// doesn't exist.
func Get(ctx *loom.Context, key string) string {
	v, _ := ctx.GetConfig(key)
	return v
}

// GetBool loads an optional configuration value by its key, as a bool, or
// returns false if it doesn't exist.
func GetBool(ctx *loom.Context, key string) bool {
	if v, ok := ctx.GetConfig(key); ok {
		return cast.ToBool(v)
	}
	return false
}

// GetInt loads an optional configuration value by its key, as an int, or
// returns 0 if it doesn't exist.
func GetInt(ctx *loom.Context, key string) int {
	if v, ok := ctx.GetConfig(key); ok {
		return cast.ToInt(v)
	}
	return 0
}

// GetFloat64 loads an optional configuration value by its key, as a float64,
// or returns 0 if it doesn't exist.
func GetFloat64(ctx *loom.Context, key string) float64 {
	if v, ok := ctx.GetConfig(key); ok {
		return cast.ToFloat64(v)
	}
	return 0
}

// GetObject attempts to load an optional configuration value by its key into
// the specified output variable.
func GetObject(ctx *loom.Context, key string, output interface{}) error {
	if v, ok := ctx.GetConfig(key); ok {
		return json.Unmarshal([]byte(v), output)
	}
	return nil
}

// Require loads a configuration value by its key, or panics if it doesn't
// exist.
func Require(ctx *loom.Context, key string) string {
	v, ok := ctx.GetConfig(key)
	if !ok {
		panic(errors.Errorf("missing required configuration variable '%s'; run `loom config` to set", key))
	}
	return v
}

// RequireBool loads a configuration value by its key, as a bool, or panics if
// it doesn't exist.
func RequireBool(ctx *loom.Context, key string) bool {
	return cast.ToBool(Require(ctx, key))
}

// RequireInt loads a configuration value by its key, as an int, or panics if
// it doesn't exist.
func RequireInt(ctx *loom.Context, key string) int {
	return cast.ToInt(Require(ctx, key))
}

// RequireFloat64 loads a configuration value by its key, as a float64, or
// panics if it doesn't exist.
func RequireFloat64(ctx *loom.Context, key string) float64 {
	return cast.ToFloat64(Require(ctx, key))
}

// Try loads a configuration value by its key, returning a non-nil error if it
// doesn't exist.
func Try(ctx *loom.Context, key string) (string, error) {
	v, ok := ctx.GetConfig(key)
	if !ok {
		return "", errors.Errorf("missing required configuration variable '%s'; run `loom config` to set", key)
	}
	return v, nil
}

// TryBool loads an optional configuration value by its key, as a bool, or
// returns an error if it doesn't exist.
func TryBool(ctx *loom.Context, key string) (bool, error) {
	v, err := Try(ctx, key)
	if err != nil {
		return false, err
	}
	return cast.ToBool(v), nil
}

// TryInt loads an optional configuration value by its key, as an int, or
// returns an error if it doesn't exist.
func TryInt(ctx *loom.Context, key string) (int, error) {
	v, err := Try(ctx, key)
	if err != nil {
		return 0, err
	}
	return cast.ToInt(v), nil
}
