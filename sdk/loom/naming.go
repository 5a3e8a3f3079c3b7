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

// PropertyTable translates property names between a binding's local naming
// convention and the wire convention used when talking to the engine. Tables
// are generated ahead of time, one per resource type; the runtime only ever
// performs lookups against them.
//
// Names absent from the table pass through unchanged in both directions, so a
// nil table is the identity translation.
type PropertyTable struct {
	toWire  map[string]string
	toLocal map[string]string
}

// NewPropertyTable builds a table from a local-name to wire-name mapping. The
// mapping must be a bijection; when two local names map to the same wire name
// the later entry silently wins, which generated tables never produce.
func NewPropertyTable(localToWire map[string]string) *PropertyTable {
	t := &PropertyTable{
		toWire:  make(map[string]string, len(localToWire)),
		toLocal: make(map[string]string, len(localToWire)),
	}
	for local, wire := range localToWire {
		t.toWire[local] = wire
		t.toLocal[wire] = local
	}
	return t
}

// Wire returns the wire name for the given local name.
func (t *PropertyTable) Wire(local string) string {
	if t == nil {
		return local
	}
	if wire, ok := t.toWire[local]; ok {
		return wire
	}
	return local
}

// Local returns the local name for the given wire name.
func (t *PropertyTable) Local(wire string) string {
	if t == nil {
		return wire
	}
	if local, ok := t.toLocal[wire]; ok {
		return local
	}
	return wire
}
