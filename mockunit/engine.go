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

//T is compatible with builtin testing.T
type T interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

//CleanupT is a T that can also register deferred per-test cleanup and report
//the name of the running test, as builtin testing.T does.
//Required by the Setup integration.
type CleanupT interface {
	T
	Cleanup(func())
	Name() string
}

//Unit identifies a replaceable code unit registered with an Engine.
//
//Identity is by value equality. A Unit is doubled at most once at any instant.
type Unit string

/*
Options configure a double at creation time.

The zero value is a plain double - calls to functions without an installed
replacement fail, and every dispatched call is recorded.
*/
type Options struct {
	//Passthrough lets calls to non-replaced functions fall through to the
	//original implementation, and enables Passthrough() inside replacements.
	Passthrough bool

	//NoHistory disables call recording for this double. Assertion queries
	//against a no-history double observe an empty history.
	NoHistory bool
}

//Replacement maps a function name to a substitute implementation.
//Arity is derived from Impl's signature, so the same Name may appear with
//implementations of different arity as independent entries.
type Replacement struct {
	Name string
	Impl interface{}
}

//Replace builds a Replacement for use in a Mock descriptor or Register call.
func Replace(name string, impl interface{}) Replacement {
	return Replacement{Name: name, Impl: impl}
}

//Mock describes one unit to double: the unit, its creation options and the
//function replacements to install. Within Funcs, a repeated (name, arity)
//entry overwrites the earlier one.
type Mock struct {
	Unit  Unit
	Opts  Options
	Funcs []Replacement
}

//CallRecord is one recorded invocation of a doubled function.
//Records are append-only in call order for the life of a double and are
//discarded when the double is destroyed.
type CallRecord struct {
	tick      uint64 //global ordering across units and goroutines
	Goroutine int64
	Unit      Unit
	Func      string
	Args      []interface{}
	Returns   []interface{}
}

func (r CallRecord) String() string {
	return fmt.Sprintf("%s.%s(%s) (returned %s)", r.Unit, r.Func, formatValues(r.Args), formatValues(r.Returns))
}

//Order is a monotonic sequence number shared by all records across all
//units, for verifying the relative order of calls to different functions
//or units.
func (r CallRecord) Order() uint64 {
	return r.tick
}

var (
	//ErrEngineUnavailable reports that the engine could not create or patch a
	//unit, eg the unit was never registered.
	ErrEngineUnavailable = errors.New("double engine unavailable for unit")

	//ErrAlreadyDoubled reports an attempt to stack a second double on a unit.
	ErrAlreadyDoubled = errors.New("unit is already doubled")

	//ErrValidationFailed reports that a unit did not pass post-install validation.
	ErrValidationFailed = errors.New("doubled unit failed validation")

	//ErrNotDoubled is the recoverable error from destroying a unit that is not
	//currently doubled. Callers performing defensive or repeated restores
	//ignore exactly this condition and nothing broader.
	ErrNotDoubled = errors.New("unit is not currently doubled")

	//ErrNotPassthrough reports Passthrough invoked for a unit whose double was
	//not created with Options.Passthrough, or outside a replacement body.
	ErrNotPassthrough = errors.New("passthrough not enabled")

	//ErrNotReplaced reports a call to a doubled unit's function that has no
	//installed replacement and no passthrough to fall back on.
	ErrNotReplaced = errors.New("function not replaced on doubled unit")
)

/*
Engine is the double engine contract this library is built over.

An Engine owns process-wide, identity-keyed state: doubling a Unit affects
every caller of that unit, not just the installing goroutine. Install and
restore are synchronous bounded operations.

UnitEngine is the in-process reference implementation.
*/
type Engine interface {
	//Exists reports whether unit is known to the engine.
	Exists(unit Unit) bool

	//Create installs a fresh double over unit. Fails with ErrEngineUnavailable
	//if the unit is unknown, or ErrAlreadyDoubled if a double is present.
	Create(unit Unit, opts Options) error

	//Expect installs a replacement implementation for one function of a
	//doubled unit. A later Expect for the same (name, arity) wins.
	Expect(unit Unit, name string, impl interface{}) error

	//Validate reports whether unit is currently and consistently doubled.
	Validate(unit Unit) bool

	//Destroy removes the double from unit, restoring original behaviour and
	//discarding its call history. Destroying a unit that is not doubled
	//returns ErrNotDoubled, which repeated restores treat as a no-op.
	Destroy(unit Unit) error

	//WasCalled reports whether at least one recorded call to unit.name
	//matches pattern. See Called for pattern semantics.
	WasCalled(unit Unit, name string, pattern []interface{}) bool

	//NumCalls counts the recorded calls to unit.name matching pattern.
	NumCalls(unit Unit, name string, pattern []interface{}) int

	//History returns the unit's recorded calls in call order.
	History(unit Unit) []CallRecord

	//Passthrough invokes the original implementation of the function whose
	//replacement is currently executing on this goroutine.
	Passthrough(args []interface{}) ([]interface{}, error)
}

var defaultEngine = NewUnitEngine()

//Default returns the package-wide engine used by Register, Call, WithMocks
//and the assertion layer. Doubling through it is process-wide state, so two
//protected sections over the same Unit must not run concurrently.
func Default() *UnitEngine {
	return defaultEngine
}
