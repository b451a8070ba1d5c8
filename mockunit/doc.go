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

/*
Package mockunit temporarily replaces the functions of a named unit for the
duration of a test, records invocations for later assertions, and restores
the original behaviour afterward - including when the test body panics.

Units

A unit is a named bag of functions registered once with the engine, usually
from a package init block, and dispatched through Call:

 func init() {
	MustRegister("Greeter",
		Replace("Hello", func(name string) string { return "Hello, " + name }),
	)
 }

 func Hello(name string) string {
	return Call("Greeter", "Hello", name)[0].(string)
 }

Doubling a unit is process-wide: it replaces the unit for every caller, not
just the installing goroutine. Tests that double the same unit must therefore
not run concurrently with each other.

Mocking

WithMock installs a replacement, runs the test body, and restores the unit on
every exit path:

 func Test_Greeter(t *testing.T) {
	WithMock(t, "Greeter", Options{}, []Replacement{
		Replace("Hello", func(name string) string { return "Hi, " + name }),
	}, func() {
		if got := Hello("Ada"); got != "Hi, Ada" {
			t.Errorf("got %q", got)
		}
		AssertCalled(t, Called("Greeter", "Hello", "Ada"))
	})
 }

WithMocks installs several units at once; each is restored unconditionally
when the body returns or panics.

Assertions

Every call dispatched through a double is recorded. Patterns match recorded
calls position-wise; an argument pattern is a literal (deep equality),
Wildcard(), or any Matcher:

	AssertCalled(t, Called("Store", "Get", Wildcard()))
	AssertCalledExactly(t, Called("Text", "Reverse", 2), 3)
	AssertNotCalled(t, Called("Greeter", "Hello", "Bob"))

CallHistory returns the raw chronological records for custom assertions, eg
verifying call order across units.

Passthrough

A double created with Options{Passthrough: true} lets calls to non-replaced
functions fall through to the original implementation, and lets a replacement
invoke its own original and post-process the result:

	WithMock(t, "Text", Options{Passthrough: true}, []Replacement{
		Replace("Reverse", func(s string) string {
			return Passthrough(s)[0].(string) + "!"
		}),
	}, func() { ... })

Setup integration

Setup and SetupWithMocks bind installation to the test framework's per-test
cleanup hook, so a group of tests shares mock fixtures without repeating the
protected section:

 func TestHandlers(t *testing.T) {
	fixture := SetupWithMocks(t, serverMocks, func(tc TestContext) interface{} {
		return newFixture(tc.Name)
	})
	...
 }
*/
package mockunit
