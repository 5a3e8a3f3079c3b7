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

// Package program evaluates HCL deployment programs against the binding
// runtime. Each source file contributes resource, local, and outputs blocks;
// evaluation registers the declared resources concurrently, in dependency
// order.
package program

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/loomstack/loom/sdk/loom"
)

// Run parses and evaluates the given sources against the engine described by
// info. It returns the parsed files for diagnostic rendering alongside any
// diagnostics produced.
func Run(ctx context.Context, sources map[string][]byte, info loom.RunInfo) (map[string]*hcl.File, hcl.Diagnostics) {
	// Validate some properties.
	if info.Project == "" {
		return nil, diagnosticsFromError(errors.New("missing project name"))
	} else if info.Stack == "" {
		return nil, diagnosticsFromError(errors.New("missing stack name"))
	} else if info.MonitorAddr == "" && info.Mocks == nil {
		return nil, diagnosticsFromError(errors.New("missing resource monitor RPC address"))
	}

	core, err := loom.NewContext(ctx, info)
	if err != nil {
		return nil, diagnosticsFromError(err)
	}
	defer func() { _ = core.Close() }()

	pctx := newProgramContext(ctx, core)

	// Parse the sources.
	for path, contents := range sources {
		if fileDiags := pctx.addFile(path, contents); fileDiags.HasErrors() {
			return pctx.parser.Files(), fileDiags
		}
	}

	var diags hcl.Diagnostics

	// Prepare each node.
	var nodeNames []string
	for n := range pctx.nodes {
		nodeNames = append(nodeNames, n)
	}
	sort.Strings(nodeNames)
	for _, name := range nodeNames {
		nodeDiags := pctx.nodes[name].prepare(pctx)
		diags = append(diags, nodeDiags...)
	}

	// Prepare each output.
	var outputNames []string
	for n := range pctx.outputs {
		outputNames = append(outputNames, n)
	}
	sort.Strings(outputNames)
	for _, name := range outputNames {
		outputDiags := pctx.outputs[name].prepare(pctx)
		diags = append(diags, outputDiags...)
	}

	if diags.HasErrors() {
		return pctx.parser.Files(), diags
	}

	runErr := loom.RunWithContext(core, func(*loom.Context) error {
		// Kick off node evaluations.
		for _, n := range pctx.nodes {
			go n.evaluate(pctx)
		}

		// Await all node evaluations.
		for _, name := range nodeNames {
			_, nodeDiags, _ := pctx.nodes[name].await(pctx)
			diags = append(diags, nodeDiags...)
		}

		// Evaluate and export stack outputs.
		for _, name := range outputNames {
			o := pctx.outputs[name]
			val, valDiags := o.evaluate(pctx)
			diags = append(diags, valDiags...)
			if val != cty.NilVal {
				core.Export(o.name, val)
			}
		}

		if diags.HasErrors() {
			return fmt.Errorf("program evaluation failed")
		}
		return nil
	})
	if runErr != nil && !diags.HasErrors() {
		diags = append(diags, diagnosticsFromError(runErr)...)
	}

	return pctx.parser.Files(), diags
}
