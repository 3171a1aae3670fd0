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

package exec

import (
	"github.com/weftdb/weft/sparql"
	"github.com/weftdb/weft/store"
)

// evalAsk implements ASK (spec.md §4.10 rule 9): collapse the pattern's
// solution to a single Go bool, true iff it has at least one row.
func evalAsk(ds *store.Dataset, g *store.Graph, grp *sparql.Group) bool {
	table := evalGroupContents(ds, g, grp, identityTable())
	return len(table.Rows) > 0
}
