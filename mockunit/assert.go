/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mockunit

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig = &spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func formatValues(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strings.TrimSpace(spewConfig.Sprintf("%#v", v))
	}
	return strings.Join(parts, ", ")
}

//Pattern is an assertion-time query over a unit's recorded calls. Each
//position in Args is a literal (deep equality), Wildcard(), or any Matcher;
//matching is position-wise and arity-strict.
type Pattern struct {
	Unit Unit
	Func string
	Args []interface{}
}

//Called builds a Pattern for u.name with the given argument patterns.
func Called(u Unit, name string, args ...interface{}) Pattern {
	return Pattern{Unit: u, Func: name, Args: args}
}

func (p Pattern) String() string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = fmt.Sprint(toMatcher(a))
	}
	return fmt.Sprintf("%s.%s(%s)", p.Unit, p.Func, strings.Join(parts, ", "))
}

//WasCalled reports whether at least one recorded call matches p.
func WasCalled(p Pattern) bool {
	return defaultEngine.WasCalled(p.Unit, p.Func, p.Args)
}

//NumCalls counts the recorded calls matching p.
func NumCalls(p Pattern) int {
	return defaultEngine.NumCalls(p.Unit, p.Func, p.Args)
}

//CallHistory returns u's recorded calls in call order, for custom
//assertions such as verifying call order across functions or units.
//Valid only while u is doubled; after restore the history is empty.
func CallHistory(u Unit) []CallRecord {
	return defaultEngine.History(u)
}

//historyDump enumerates every recorded call to the unit, in call order.
func historyDump(e Engine, u Unit) string {
	history := e.History(u)
	if len(history) == 0 {
		return fmt.Sprintf("  (no recorded calls to %s)", u)
	}
	sb := strings.Builder{}
	for i, r := range history {
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(fmt.Sprintf("  %d. %v", i, r))
	}
	return sb.String()
}

//AssertCalled fails t unless at least one recorded call matches p.
//The failure message enumerates the unit's full call history.
func AssertCalled(t T, p Pattern) {
	t.Helper()
	if !WasCalled(p) {
		t.Errorf("mockunit: expected a call matching %v, recorded calls:\n%s", p, historyDump(defaultEngine, p.Unit))
	}
}

//AssertNotCalled fails t if any recorded call matches p, reporting the
//actual count.
func AssertNotCalled(t T, p Pattern) {
	t.Helper()
	AssertCalls(t, p, Never())
}

//AssertCalledExactly fails t unless exactly n recorded calls match p,
//reporting the actual count.
func AssertCalledExactly(t T, p Pattern, n int) {
	t.Helper()
	AssertCalls(t, p, Exactly(n))
}

//AssertCalledAtLeast fails t unless at least n recorded calls match p.
func AssertCalledAtLeast(t T, p Pattern, n int) {
	t.Helper()
	AssertCalls(t, p, AtLeast(n))
}

//AssertCalls verifies an arbitrary Expectation on the count of recorded
//calls matching p.
func AssertCalls(t T, p Pattern, expect Expectation) {
	t.Helper()
	if count := NumCalls(p); !expect.Met(count) {
		t.Errorf("mockunit: %v expected %v, found %d calls", p, expect, count)
	}
}
