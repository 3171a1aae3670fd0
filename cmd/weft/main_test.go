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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommandDataAndQuery(t *testing.T) {
	data := writeFile(t, "data.ttl", `
		@prefix ex: <http://example.org/> .
		ex:alice ex:knows ex:bob .
	`)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--data", data,
		"--query", "PREFIX ex: <http://example.org/> SELECT ?who WHERE { ex:alice ex:knows ?who }",
	})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "http://example.org/bob")
}

func TestRootCommandConfigFile(t *testing.T) {
	data := writeFile(t, "data.ttl", `<http://example.org/s> <http://example.org/p> <http://example.org/o> .`)
	cfg := writeFile(t, "weft.yaml", "graphs:\n  default: "+data+"\n")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--config", cfg,
		"--query", "ASK { <http://example.org/s> <http://example.org/p> <http://example.org/o> }",
	})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.Contains(out.String(), "true"))
}

func TestRootCommandQueryFromStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("ASK { ?s ?p ?o }"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "false")
}
