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

package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/loomstack/loom/program"
	"github.com/loomstack/loom/sdk/loom"
)

func main() {
	if err := newLanguageHostCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLanguageHostCmd() *cobra.Command {
	var (
		cwd      string
		project  string
		stack    string
		monitor  string
		engine   string
		parallel int
		dryRun   bool
		config   []string
	)

	cmd := &cobra.Command{
		Use:   "loom-language-hcl",
		Short: "Evaluate an HCL deployment program against a Loom engine",
		Long: "Evaluate an HCL deployment program against a Loom engine.\n" +
			"\n" +
			"All .pp files in the working directory are parsed and evaluated as a\n" +
			"single program. Flags that are not set fall back to the standard\n" +
			"LOOM_* environment variables.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return errors.Wrap(err, "changing working directory")
				}
			}

			info := runInfoFromEnv()
			if project != "" {
				info.Project = project
			}
			if stack != "" {
				info.Stack = stack
			}
			if monitor != "" {
				info.MonitorAddr = monitor
			}
			if engine != "" {
				info.EngineAddr = engine
			}
			if cmd.Flags().Changed("parallel") {
				info.Parallel = parallel
			}
			if cmd.Flags().Changed("dry-run") {
				info.DryRun = dryRun
			}
			for _, kv := range config {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					return errors.Errorf("malformed config value %q, expected KEY=VALUE", kv)
				}
				if info.Config == nil {
					info.Config = map[string]string{}
				}
				info.Config[parts[0]] = parts[1]
			}

			sources, err := readSources(".")
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return errors.New("no .pp source files found in the working directory")
			}

			files, diags := program.Run(context.Background(), sources, info)
			if len(diags) > 0 {
				werr := hcl.NewDiagnosticTextWriter(os.Stderr, files, 0, true).WriteDiagnostics(diags)
				if werr != nil {
					return werr
				}
				if diags.HasErrors() {
					return errors.New("program failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "run the program from this directory")
	cmd.Flags().StringVar(&project, "project", "", "the project name")
	cmd.Flags().StringVar(&stack, "stack", "", "the stack name")
	cmd.Flags().StringVar(&monitor, "monitor", "", "the resource monitor RPC address")
	cmd.Flags().StringVar(&engine, "engine", "", "the engine RPC address")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "the degree of parallelism for resource operations")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the deployment without applying it")
	cmd.Flags().StringArrayVarP(&config, "config", "c", nil, "config values to set, as KEY=VALUE")

	return cmd
}

func runInfoFromEnv() loom.RunInfo {
	info := loom.RunInfo{
		Project:     os.Getenv(loom.EnvProject),
		Stack:       os.Getenv(loom.EnvStack),
		MonitorAddr: os.Getenv(loom.EnvMonitor),
		EngineAddr:  os.Getenv(loom.EnvEngine),
	}
	if dr := os.Getenv(loom.EnvDryRun); dr == "true" || dr == "1" {
		info.DryRun = true
	}
	return info
}

func readSources(dir string) (map[string][]byte, error) {
	sourcePaths, err := filepath.Glob(filepath.Join(dir, "*.pp"))
	if err != nil {
		return nil, err
	}
	sources := map[string][]byte{}
	for _, path := range sourcePaths {
		contents, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		sources[path] = contents
	}
	return sources, nil
}
