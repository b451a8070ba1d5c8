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
	"strings"
)

//Test fixture units shared by the package tests, registered with the
//default engine. Package tests do not run in parallel - doubling is
//process-wide state.
func init() {
	MustRegister("Greeter",
		Replace("Hello", greeterHello),
	)
	MustRegister("Text",
		Replace("Reverse", textReverse),
		Replace("Upper", strings.ToUpper),
	)
	MustRegister("Store",
		Replace("Get", storeGet),
		Replace("Get", storeGetDefault),
	)
	MustRegister("Calc",
		Replace("Add", func(a, b int) int { return a + b }),
		Replace("Sum", func(xs ...int) int {
			total := 0
			for _, x := range xs {
				total += x
			}
			return total
		}),
	)
}

func greeterHello(name string) string {
	return "Hello, " + name
}

func textReverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func storeGet(key string) string {
	return "stored:" + key
}

func storeGetDefault(key, fallback string) string {
	if key == "" {
		return fallback
	}
	return storeGet(key)
}

func registerFixtures(e *UnitEngine) {
	e.MustRegister("Greeter", Replace("Hello", greeterHello))
	e.MustRegister("Text",
		Replace("Reverse", textReverse),
		Replace("Upper", strings.ToUpper),
	)
	e.MustRegister("Store",
		Replace("Get", storeGet),
		Replace("Get", storeGetDefault),
	)
}

var errFatalf = errors.New("recordT.Fatalf")

//recordT is a T that records failures instead of terminating, used to test
//this library's own failure paths. Fatalf panics like testing.T's runtime
//goroutine exit; drive it through run() to absorb that.
type recordT struct {
	failures []string
	fatals   []string
	logs     []string
}

func (r *recordT) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *recordT) Fatalf(format string, args ...interface{}) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
	panic(errFatalf)
}

func (r *recordT) Logf(format string, args ...interface{}) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recordT) Helper() {}

//run executes f, absorbing the panic from a Fatalf so the caller can inspect
//the recorded failure. Reports whether f ran to completion.
func (r *recordT) run(f func()) (completed bool) {
	defer func() {
		if e := recover(); e != nil && e != errFatalf {
			panic(e)
		}
	}()
	f()
	return true
}

//stubEngine is a hand-driven Engine for exercising registry and lifecycle
//error paths that the real engine cannot be made to produce.
type stubEngine struct {
	exists    func(Unit) bool
	create    func(Unit, Options) error
	expect    func(Unit, string, interface{}) error
	validate  func(Unit) bool
	destroy   func(Unit) error
	destroyed []Unit
}

func newStubEngine() *stubEngine {
	return &stubEngine{}
}

func (s *stubEngine) Exists(u Unit) bool {
	if s.exists != nil {
		return s.exists(u)
	}
	return true
}

func (s *stubEngine) Create(u Unit, opts Options) error {
	if s.create != nil {
		return s.create(u, opts)
	}
	return nil
}

func (s *stubEngine) Expect(u Unit, name string, impl interface{}) error {
	if s.expect != nil {
		return s.expect(u, name, impl)
	}
	return nil
}

func (s *stubEngine) Validate(u Unit) bool {
	if s.validate != nil {
		return s.validate(u)
	}
	return true
}

func (s *stubEngine) Destroy(u Unit) error {
	s.destroyed = append(s.destroyed, u)
	if s.destroy != nil {
		return s.destroy(u)
	}
	return nil
}

func (s *stubEngine) WasCalled(Unit, string, []interface{}) bool { return false }

func (s *stubEngine) NumCalls(Unit, string, []interface{}) int { return 0 }

func (s *stubEngine) History(Unit) []CallRecord { return nil }

func (s *stubEngine) Passthrough([]interface{}) ([]interface{}, error) {
	return nil, ErrNotPassthrough
}
