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

// ResourceOptions carries the deployment-wide settings for a single binding.
// The zero value is a valid, empty set of options.
type ResourceOptions struct {
	// ID identifies an existing resource to adopt instead of creating a new
	// one. When set, construction performs a lookup and the input bag must be
	// empty.
	ID string

	// Version pins the provider plugin version used to service the binding.
	// When empty, the SDK stamps in its own version.
	Version string

	// Parent establishes a parent/child link between bindings.
	Parent *Binding

	// DependsOn lists bindings that must be registered before this one.
	DependsOn []*Binding

	// Protect prevents the engine from ever deleting the resource.
	Protect bool

	// DeleteBeforeReplace deletes the old resource before creating its
	// replacement rather than the other way around.
	DeleteBeforeReplace bool

	// IgnoreChanges names input properties whose drift the engine ignores.
	IgnoreChanges []string

	// ReplaceOnChanges names input properties whose change forces a
	// replacement instead of an update. "*" matches every property.
	ReplaceOnChanges []string

	// Import adopts an existing resource into the deployment on first
	// registration, identified by its provider-assigned id.
	Import string

	// Provider names an explicit provider instance to service the binding.
	Provider string
}

// MergeOptions combines two option sets into a new one. Fields set on b take
// precedence over fields set on a; DependsOn accumulates. Neither argument is
// mutated, and either may be nil.
func MergeOptions(a, b *ResourceOptions) *ResourceOptions {
	merged := &ResourceOptions{}
	if a != nil {
		*merged = *a
		merged.DependsOn = append([]*Binding(nil), a.DependsOn...)
		merged.IgnoreChanges = append([]string(nil), a.IgnoreChanges...)
		merged.ReplaceOnChanges = append([]string(nil), a.ReplaceOnChanges...)
	}
	if b == nil {
		return merged
	}

	if b.ID != "" {
		merged.ID = b.ID
	}
	if b.Version != "" {
		merged.Version = b.Version
	}
	if b.Parent != nil {
		merged.Parent = b.Parent
	}
	merged.DependsOn = append(merged.DependsOn, b.DependsOn...)
	if b.Protect {
		merged.Protect = true
	}
	if b.DeleteBeforeReplace {
		merged.DeleteBeforeReplace = true
	}
	if len(b.IgnoreChanges) > 0 {
		merged.IgnoreChanges = append(merged.IgnoreChanges, b.IgnoreChanges...)
	}
	if len(b.ReplaceOnChanges) > 0 {
		merged.ReplaceOnChanges = append(merged.ReplaceOnChanges, b.ReplaceOnChanges...)
	}
	if b.Import != "" {
		merged.Import = b.Import
	}
	if b.Provider != "" {
		merged.Provider = b.Provider
	}
	return merged
}
