// Copyright 2024 The Weft Authors
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

// Command weft loads one or more Turtle files into an in-memory dataset
// and runs a single SPARQL query against it, printing the result as a
// table (spec.md §1, "specified only for completeness"; SPEC_FULL.md's
// ambient-stack CLI section). It exists to exercise the library end to
// end, not to grow into a server.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weftdb/weft/engine"
	"github.com/weftdb/weft/sparql/exec"
	"github.com/weftdb/weft/store"
)

// datasetConfig is the shape of the --config YAML file: dataset graph
// name to Turtle file path.
type datasetConfig struct {
	Graphs map[string]string `yaml:"graphs"`
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath, dataPath, queryText, activeGraph string

	cmd := &cobra.Command{
		Use:   "weft [query]",
		Short: "Run a SPARQL query against a Turtle dataset",
		Long: `weft loads one or more Turtle files into an in-memory dataset and runs a
single SPARQL query against it, printing the result as a table.

The query comes from --query, the first positional argument, or stdin,
in that order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, runOptions{configPath, dataPath, queryText, activeGraph}, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config mapping graph name to Turtle file")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Turtle file to load into the default graph")
	cmd.Flags().StringVarP(&queryText, "query", "q", "", "SPARQL query text (default: positional arg, then stdin)")
	cmd.Flags().StringVarP(&activeGraph, "graph", "g", store.DefaultGraphName, "graph to run the query against")

	return cmd
}

type runOptions struct {
	configPath, dataPath, queryText, activeGraph string
}

func run(cmd *cobra.Command, opts runOptions, args []string) error {
	e := engine.New(engine.Config{})

	switch {
	case opts.configPath != "":
		cfg, err := loadDatasetConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("weft: reading config %q: %w", opts.configPath, err)
		}
		for name, path := range cfg.Graphs {
			if err := e.LoadTurtleFile(name, path); err != nil {
				return fmt.Errorf("weft: loading graph %q: %w", name, err)
			}
		}
	case opts.dataPath != "":
		if err := e.LoadTurtleFile(store.DefaultGraphName, opts.dataPath); err != nil {
			return fmt.Errorf("weft: loading %q: %w", opts.dataPath, err)
		}
	}

	e.Dataset.SetActiveGraph(opts.activeGraph)

	query, err := resolveQuery(cmd, opts.queryText, args)
	if err != nil {
		return err
	}

	result, err := e.Query(query)
	if err != nil {
		return fmt.Errorf("weft: %w", err)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func resolveQuery(cmd *cobra.Command, queryText string, args []string) (string, error) {
	if queryText != "" {
		return queryText, nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return "", fmt.Errorf("weft: reading query from stdin: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, result *exec.Result) {
	switch {
	case result.Ask != nil:
		fmt.Fprintln(w, *result.Ask)
	case result.Table != nil:
		fmt.Fprintln(w, result.Table.String())
	case result.Triples != nil:
		for _, t := range result.Triples {
			fmt.Fprintf(w, "%s %s %s .\n", t.Subject.String(), t.Predicate.String(), t.Object.String())
		}
	}
}

func loadDatasetConfig(path string) (*datasetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg datasetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
