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

/*
WithMocks installs a double for every descriptor in mocks, runs body exactly
once, then restores every installed unit - whether body returned normally or
panicked. A panic from body propagates unchanged after teardown; teardown
failures while it propagates are reported through t as suppressed secondary
errors, never replacing the primary failure.

Setup failures (an unknown unit, an incompatible replacement, failed
post-install validation) fatally fail the test before body runs; units
already installed by the failing batch are restored first.

Doubling is process-wide, so two WithMocks sections over the same Unit must
not run concurrently. Within one section the body may spawn concurrent work;
recording is safe from multiple goroutines.
*/
func WithMocks(t T, mocks []Mock, body func()) {
	t.Helper()
	_ = withMocks(t, defaultEngine, mocks, func() error {
		body()
		return nil
	})
}

//WithMock is single-unit shorthand for WithMocks.
func WithMock(t T, u Unit, opts Options, funcs []Replacement, body func()) {
	t.Helper()
	WithMocks(t, []Mock{{Unit: u, Opts: opts, Funcs: funcs}}, body)
}

//WithMocksE is WithMocks for a body that produces an error, returned to the
//caller after teardown.
func WithMocksE(t T, mocks []Mock, body func() error) error {
	t.Helper()
	return withMocks(t, defaultEngine, mocks, body)
}

func withMocks(t T, e Engine, mocks []Mock, body func() error) error {
	t.Helper()
	installed, err := installAll(e, mocks)
	if err != nil {
		restoreAll(t, e, installed)
		t.Fatalf("mockunit: setup failed: %v", err)
		return err //reached only under a non-terminating T
	}
	defer restoreAll(t, e, installed)
	return body()
}
