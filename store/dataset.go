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

package store

import (
	"sync"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnknownGraph is returned when a dataset operation names a graph that
// has not been created.
var ErrUnknownGraph = errors.NewKind("store: no such graph %q")

// DefaultGraphName is the name Dataset uses for its designated default
// graph when none is given explicitly.
const DefaultGraphName = "default"

// Config configures a new Dataset, following the teacher's sqle.Config
// pattern of a small constructor-argument struct rather than a pile of
// positional parameters.
type Config struct {
	// DefaultGraphName overrides the name NewDataset gives the graph it
	// creates and marks as both default and active. Empty means
	// DefaultGraphName.
	DefaultGraphName string
}

// Dataset is a named mapping of graph name to Graph, with a designated
// default graph and an active graph pointer (spec.md §3, §4.3). All SPARQL
// evaluation reads the active graph.
type Dataset struct {
	mu      sync.RWMutex
	graphs  map[string]*Graph
	active  string
	dflt    string
}

// NewDataset creates a Dataset with a single empty default graph, active.
func NewDataset(cfg Config) *Dataset {
	name := cfg.DefaultGraphName
	if name == "" {
		name = DefaultGraphName
	}
	d := &Dataset{
		graphs: make(map[string]*Graph),
		dflt:   name,
	}
	d.graphs[name] = NewGraph()
	d.active = name
	return d
}

// CreateGraph adds a new, empty named graph, replacing any existing graph
// of the same name.
func (d *Dataset) CreateGraph(name string) *Graph {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := NewGraph()
	d.graphs[name] = g
	return g
}

// Graph returns the named graph, creating it if absent.
func (d *Dataset) Graph(name string) *Graph {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.graphs[name]
	if !ok {
		g = NewGraph()
		d.graphs[name] = g
	}
	return g
}

// GraphNamed returns the named graph and whether it exists, without
// creating it.
func (d *Dataset) GraphNamed(name string) (*Graph, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.graphs[name]
	return g, ok
}

// DropGraph removes the named graph from the dataset.
func (d *Dataset) DropGraph(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.graphs, name)
}

// Names returns every graph name currently in the dataset.
func (d *Dataset) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.graphs))
	for n := range d.graphs {
		out = append(out, n)
	}
	return out
}

// SetActiveGraph switches the dataset's active graph view, creating it if
// it does not yet exist (spec.md §4.3).
func (d *Dataset) SetActiveGraph(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.graphs[name]; !ok {
		d.graphs[name] = NewGraph()
	}
	d.active = name
}

// Active returns the dataset's current active graph (the default graph
// when none has been explicitly selected).
func (d *Dataset) Active() *Graph {
	d.mu.RLock()
	name := d.active
	d.mu.RUnlock()
	return d.Graph(name)
}

// ActiveName returns the name of the current active graph.
func (d *Dataset) ActiveName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Default returns the dataset's designated default graph.
func (d *Dataset) Default() *Graph {
	d.mu.RLock()
	name := d.dflt
	d.mu.RUnlock()
	return d.Graph(name)
}
