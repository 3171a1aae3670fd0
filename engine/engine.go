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

// Package engine is weft's embeddable facade (spec.md §5, §6): it owns a
// store.Dataset and wires the grammar-based SPARQL parser to the exec
// package's evaluator, the way the teacher's sqle.Engine is pure plumbing
// over its own analyzer/rowexec packages rather than new query logic.
package engine

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/weftdb/weft/sparql/exec"
	"github.com/weftdb/weft/sparql/grammar"
	"github.com/weftdb/weft/store"
	"github.com/weftdb/weft/turtle"
)

// ErrParseQuery wraps a SPARQL syntax error at the facade boundary, so
// callers of engine.Query never need to import sparql/grammar directly.
var ErrParseQuery = errors.NewKind("engine: failed to parse query")

// ErrReadOnly is returned by any operation that would modify the dataset
// while Config.IsReadOnly is set.
var ErrReadOnly = errors.NewKind("engine: dataset is read-only")

// Config configures a new Engine, following the teacher's sqle.Config
// pattern (VersionPostfix, IsReadOnly, ...).
type Config struct {
	// VersionPostfix mirrors the teacher's Config.VersionPostfix. The
	// engine stores it but nothing reads it: there is no VERSION builtin.
	VersionPostfix string

	// IsReadOnly disallows LoadTurtleFile and any other dataset mutation.
	IsReadOnly bool

	// Logger receives query start/end, parse failures, and load events at
	// Debug/Info level. A nil Logger discards all output, matching the
	// teacher's pattern of an optional injected logger.
	Logger *logrus.Logger

	// DefaultGraphName overrides the Dataset's default/active graph name.
	DefaultGraphName string
}

// Engine is weft embedded in a host process: one Dataset plus the
// query-execution pipeline over it.
type Engine struct {
	Dataset *store.Dataset
	Config  Config

	log *logrus.Entry
}

// New creates an Engine with a fresh, empty Dataset.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Engine{
		Dataset: store.NewDataset(store.Config{DefaultGraphName: cfg.DefaultGraphName}),
		Config:  cfg,
		log:     logger.WithField("component", "engine"),
	}
}

// Query parses and evaluates a single SPARQL query against the Engine's
// Dataset (spec.md §4.10). The query's WHERE clause runs against whatever
// graph is currently active; a GRAPH clause within it may switch graphs
// for its own subtree only.
func (e *Engine) Query(query string) (*exec.Result, error) {
	e.log.WithField("query", query).Debug("query start")

	root, err := grammar.Parse(query)
	if err != nil {
		e.log.WithFields(logrus.Fields{"query": query, "error": err}).Info("query parse failed")
		return nil, ErrParseQuery.Wrap(err)
	}

	result := exec.Execute(e.Dataset, root)
	e.log.WithField("query", query).Debug("query end")
	return result, nil
}

// LoadTurtleFile parses a Turtle document and asserts every triple it
// contains into the named graph, creating the graph if it does not yet
// exist (spec.md §4.6, SPEC_FULL.md's "Supplemented Features").
func (e *Engine) LoadTurtleFile(graphName, path string) error {
	if e.Config.IsReadOnly {
		return ErrReadOnly.New()
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	triples, err := turtle.Parse(f, "")
	if err != nil {
		return err
	}

	g := e.Dataset.Graph(graphName)
	for _, t := range triples {
		g.Assert(t.Subject.String(), t.Predicate.String(), t.Object.String())
	}

	e.log.WithFields(logrus.Fields{
		"graph":   graphName,
		"path":    path,
		"triples": len(triples),
	}).Info("loaded turtle file")
	return nil
}
