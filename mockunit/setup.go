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

//TestContext carries per-test information into a setup body so it can derive
//context-dependent fixtures.
type TestContext struct {
	Name string
}

/*
Setup installs a double for every descriptor and registers restore with the
test framework's deferred-cleanup hook, so the doubles live for the remainder
of the current test regardless of outcome.

An individual test may still call WithMock or WithMocks for the same unit:
the fresh install restores the setup-level double first, the test-local
double is restored when its own section ends, and this cleanup's restore of
the already-restored unit is then a no-op.
*/
func Setup(t CleanupT, mocks ...Mock) {
	t.Helper()
	installed, err := installAll(defaultEngine, mocks)
	if err != nil {
		restoreAll(t, defaultEngine, installed)
		t.Fatalf("mockunit: setup failed: %v", err)
		return
	}
	t.Cleanup(func() {
		restoreAll(t, defaultEngine, installed)
	})
}

//SetupWithMocks is Setup followed by setupBody, which receives a TestContext
//naming the running test and returns the test fixture. A nil setupBody just
//installs the mocks.
func SetupWithMocks(t CleanupT, mocks []Mock, setupBody func(tc TestContext) interface{}) interface{} {
	t.Helper()
	Setup(t, mocks...)
	if setupBody == nil {
		return nil
	}
	return setupBody(TestContext{Name: t.Name()})
}
