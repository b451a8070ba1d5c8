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
	"errors"
	"fmt"
)

/*
installAll processes mocks in order against e and returns the installed unit
set in first-seen order.

For the first descriptor naming a unit, any stale double left by an uncleaned
earlier run is restored (only a not-doubled response is ignored by that
defensive restore) and a fresh double is created with the descriptor's
options. Later descriptors for the same unit merge their replacements into
the existing double; the first-seen options win. Within one descriptor a
repeated (name, arity) replacement overwrites the earlier one.

Every descriptor's unit is validated after its replacements are installed;
the first failure stops the batch. The units installed so far are returned
alongside the error so the caller can restore them.
*/
func installAll(e Engine, mocks []Mock) ([]Unit, error) {
	installed := make([]Unit, 0, len(mocks))
	seen := make(map[Unit]bool, len(mocks))

	for _, m := range mocks {
		if !seen[m.Unit] {
			if err := e.Destroy(m.Unit); err != nil && !errors.Is(err, ErrNotDoubled) {
				return installed, fmt.Errorf("restore stale double for %s: %w", m.Unit, err)
			}
			if err := e.Create(m.Unit, m.Opts); err != nil {
				return installed, fmt.Errorf("create double for %s: %w", m.Unit, err)
			}
		}
		for _, r := range m.Funcs {
			if err := e.Expect(m.Unit, r.Name, r.Impl); err != nil {
				if !seen[m.Unit] {
					installed = append(installed, m.Unit)
				}
				return installed, fmt.Errorf("install replacement %s.%s: %w", m.Unit, r.Name, err)
			}
		}
		if !seen[m.Unit] {
			seen[m.Unit] = true
			installed = append(installed, m.Unit)
		}
		if !e.Validate(m.Unit) {
			return installed, fmt.Errorf("%s: %w", m.Unit, ErrValidationFailed)
		}
	}
	return installed, nil
}

//restoreAll destroys every unit in installed, in order. An already-restored
//unit is a no-op. Other failures are reported through t as suppressed
//secondary errors so they can never mask a failure already propagating from
//the test body.
func restoreAll(t T, e Engine, installed []Unit) {
	for _, u := range installed {
		if err := e.Destroy(u); err != nil && !errors.Is(err, ErrNotDoubled) {
			t.Errorf("mockunit: suppressed teardown failure: restore %s: %v", u, err)
		}
	}
}
