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
	"io"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var tick uint64 //global atomic counter ordering all recorded calls

/*
UnitEngine is the in-process reference implementation of Engine.

Units are registered once with their real implementations, and callers
dispatch through Call. A double, once created, shadows the unit's function
table for every caller until it is destroyed; original implementations are
retained so restore is always possible.
*/
type UnitEngine struct {
	mu      sync.Mutex
	units   map[Unit]*unit
	doubles map[Unit]*double
	frames  map[int64][]frame //per-goroutine stack of in-flight doubled calls
	log     *logrus.Logger
}

type unit struct {
	name     Unit
	original map[funcKey]tableEntry
}

type double struct {
	opts    Options
	table   map[funcKey]tableEntry
	history []CallRecord
}

type funcKey struct {
	name  string
	arity int //for variadic implementations, the count of fixed parameters
}

func (k funcKey) String() string {
	return fmt.Sprintf("%s/%d", k.name, k.arity)
}

type tableEntry struct {
	fn       reflect.Value
	variadic bool
}

//NewUnitEngine returns an empty engine. Trace logging is discarded until
//SetLogger is called.
func NewUnitEngine() *UnitEngine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &UnitEngine{
		units:   make(map[Unit]*unit),
		doubles: make(map[Unit]*double),
		frames:  make(map[int64][]frame),
		log:     log,
	}
}

//SetLogger directs the engine's trace of create/expect/call/destroy events
//to l at Debug level.
func (e *UnitEngine) SetLogger(l *logrus.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = l
}

//Register makes unit known to the engine with its real implementations.
//Every Impl must be a func. The same name may be registered at several
//arities, each an independent entry.
func (e *UnitEngine) Register(u Unit, funcs ...Replacement) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.units[u]; exists {
		return fmt.Errorf("mockunit: unit %s already registered", u)
	}
	original := make(map[funcKey]tableEntry, len(funcs))
	for _, r := range funcs {
		key, entry, err := newEntry(r)
		if err != nil {
			return fmt.Errorf("mockunit: register %s: %v", u, err)
		}
		if _, dup := original[key]; dup {
			return fmt.Errorf("mockunit: register %s: duplicate function %v", u, key)
		}
		original[key] = entry
	}
	e.units[u] = &unit{name: u, original: original}
	e.log.WithField("unit", u).Debug("registered unit")
	return nil
}

//MustRegister is Register that panics on error, for package init blocks.
func (e *UnitEngine) MustRegister(u Unit, funcs ...Replacement) {
	if err := e.Register(u, funcs...); err != nil {
		panic(err)
	}
}

func newEntry(r Replacement) (funcKey, tableEntry, error) {
	if r.Impl == nil {
		return funcKey{}, tableEntry{}, fmt.Errorf("nil implementation for %s", r.Name)
	}
	fv := reflect.ValueOf(r.Impl)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return funcKey{}, tableEntry{}, fmt.Errorf("implementation for %s is %v, not a func", r.Name, ft)
	}
	arity := ft.NumIn()
	if ft.IsVariadic() {
		arity--
	}
	return funcKey{name: r.Name, arity: arity}, tableEntry{fn: fv, variadic: ft.IsVariadic()}, nil
}

//resolve finds the entry for a call of nargs arguments. Exact arity wins,
//then any variadic entry whose fixed parameters fit.
func resolve(table map[funcKey]tableEntry, name string, nargs int) (tableEntry, bool) {
	if entry, ok := table[funcKey{name: name, arity: nargs}]; ok {
		return entry, true
	}
	for key, entry := range table {
		if key.name == name && entry.variadic && key.arity <= nargs {
			return entry, true
		}
	}
	return tableEntry{}, false
}

/*
Call dispatches unit.name with args, through the installed double if one is
present, otherwise to the original implementation.

Dispatch failures panic: an unregistered unit or undefined function is a
programming error in the caller, and a call to a non-replaced function of a
doubled unit without passthrough is ErrNotReplaced. Calls through a double
are recorded unless the double was created with NoHistory.
*/
func (e *UnitEngine) Call(u Unit, name string, args ...interface{}) []interface{} {
	e.mu.Lock()
	un := e.units[u]
	if un == nil {
		e.mu.Unlock()
		panic(fmt.Errorf("mockunit: call to unregistered unit %s: %w", u, ErrEngineUnavailable))
	}
	d := e.doubles[u]
	var entry tableEntry
	var found bool
	if d != nil {
		entry, found = resolve(d.table, name, len(args))
		if !found {
			if !d.opts.Passthrough {
				e.mu.Unlock()
				panic(fmt.Errorf("mockunit: %s.%s/%d: %w", u, name, len(args), ErrNotReplaced))
			}
			entry, found = resolve(un.original, name, len(args))
		}
	} else {
		entry, found = resolve(un.original, name, len(args))
	}
	if !found {
		e.mu.Unlock()
		panic(fmt.Errorf("mockunit: undefined function %s.%s/%d", u, name, len(args)))
	}

	gid := goid()
	doubled := d != nil
	if doubled {
		e.frames[gid] = append(e.frames[gid], frame{unit: u, name: name})
	}
	log := e.log
	e.mu.Unlock()

	log.WithFields(logrus.Fields{"unit": u, "function": name, "doubled": doubled}).Debug("dispatch")

	if doubled {
		defer e.popFrame(gid)
	}

	returns := invoke(entry.fn, args)

	if doubled && !d.opts.NoHistory {
		e.record(d, u, name, gid, args, returns)
	}
	return returns
}

type frame struct {
	unit Unit
	name string
}

func (e *UnitEngine) popFrame(gid int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	stack := e.frames[gid]
	if n := len(stack); n > 0 {
		e.frames[gid] = stack[:n-1]
	}
	if len(e.frames[gid]) == 0 {
		delete(e.frames, gid)
	}
}

//record appends to the double's history, unless the double was destroyed
//while the call was in flight - history must not outlive its double.
func (e *UnitEngine) record(d *double, u Unit, name string, gid int64, args, returns []interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doubles[u] != d {
		return
	}
	d.history = append(d.history, CallRecord{
		tick:      atomic.AddUint64(&tick, 1),
		Goroutine: gid,
		Unit:      u,
		Func:      name,
		Args:      args,
		Returns:   returns,
	})
}

func invoke(fn reflect.Value, args []interface{}) []interface{} {
	ft := fn.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else if i < ft.NumIn() {
			pt = ft.In(i)
		} else {
			pt = reflect.TypeOf((*interface{})(nil)).Elem()
		}
		if arg == nil {
			in[i] = reflect.Zero(pt)
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	out := fn.Call(in)
	returns := make([]interface{}, len(out))
	for i, v := range out {
		returns[i] = v.Interface()
	}
	return returns
}

//Exists reports whether u has been registered.
func (e *UnitEngine) Exists(u Unit) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.units[u] != nil
}

//Create installs an empty double over u. No stacking: if u is already
//doubled the caller must Destroy first.
func (e *UnitEngine) Create(u Unit, opts Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.units[u] == nil {
		return fmt.Errorf("mockunit: %s: %w", u, ErrEngineUnavailable)
	}
	if e.doubles[u] != nil {
		return fmt.Errorf("mockunit: %s: %w", u, ErrAlreadyDoubled)
	}
	e.doubles[u] = &double{opts: opts, table: make(map[funcKey]tableEntry)}
	e.log.WithFields(logrus.Fields{"unit": u, "passthrough": opts.Passthrough}).Debug("created double")
	return nil
}

//Expect installs a replacement for one function of the doubled unit u.
//If the unit's original defines the same (name, arity), the replacement's
//signature must be compatible with it. A later Expect for the same
//(name, arity) overwrites the earlier one.
func (e *UnitEngine) Expect(u Unit, name string, impl interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	un := e.units[u]
	if un == nil {
		return fmt.Errorf("mockunit: %s: %w", u, ErrEngineUnavailable)
	}
	d := e.doubles[u]
	if d == nil {
		return fmt.Errorf("mockunit: expect %s.%s: %w", u, name, ErrNotDoubled)
	}
	key, entry, err := newEntry(Replacement{Name: name, Impl: impl})
	if err != nil {
		return fmt.Errorf("mockunit: expect %s: %v", u, err)
	}
	if orig, exists := un.original[key]; exists {
		if err := compatibleSignatures(orig.fn.Type(), entry.fn.Type()); err != nil {
			return fmt.Errorf("mockunit: expect %s.%v: %v", u, key, err)
		}
	}
	d.table[key] = entry
	e.log.WithFields(logrus.Fields{"unit": u, "function": key.String()}).Debug("installed replacement")
	return nil
}

//Validate reports whether u is currently and consistently doubled.
func (e *UnitEngine) Validate(u Unit) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.doubles[u]
	if e.units[u] == nil || d == nil {
		return false
	}
	for _, entry := range d.table {
		if entry.fn.Kind() != reflect.Func || entry.fn.IsNil() {
			return false
		}
	}
	return true
}

//Destroy removes the double from u, restoring original dispatch and
//discarding the call history. Not-doubled units (including unregistered
//ones) report ErrNotDoubled, which idempotent restores ignore.
func (e *UnitEngine) Destroy(u Unit) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doubles[u] == nil {
		return fmt.Errorf("mockunit: %s: %w", u, ErrNotDoubled)
	}
	delete(e.doubles, u)
	e.log.WithField("unit", u).Debug("destroyed double")
	return nil
}

//DestroyAll removes every installed double, restoring all units. Best
//effort cleanup for defensive teardown of an uncleaned process.
func (e *UnitEngine) DestroyAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for u := range e.doubles {
		delete(e.doubles, u)
		e.log.WithField("unit", u).Debug("destroyed double")
	}
}

//WasCalled reports whether at least one recorded call to u.name matches
//pattern. Pattern entries are literals (deep equality), Wildcard(), or any
//Matcher; matching is position-wise and arity-strict.
func (e *UnitEngine) WasCalled(u Unit, name string, pattern []interface{}) bool {
	return e.NumCalls(u, name, pattern) > 0
}

//NumCalls counts the recorded calls to u.name matching pattern.
func (e *UnitEngine) NumCalls(u Unit, name string, pattern []interface{}) int {
	count := 0
	for _, r := range e.History(u) {
		if r.Func == name && matchArgs(pattern, r.Args) {
			count++
		}
	}
	return count
}

//History returns u's recorded calls in call order. The returned slice is a
//copy and may be re-read any number of times until the double is destroyed,
//after which the history is empty.
func (e *UnitEngine) History(u Unit) []CallRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.doubles[u]
	if d == nil {
		return nil
	}
	history := make([]CallRecord, len(d.history))
	copy(history, d.history)
	return history
}

//Passthrough invokes the original implementation of the function whose
//replacement is currently executing on this goroutine, and returns its
//results. Valid only inside a replacement body, and only when the owning
//double was created with Options.Passthrough.
func (e *UnitEngine) Passthrough(args []interface{}) ([]interface{}, error) {
	gid := goid()
	e.mu.Lock()
	stack := e.frames[gid]
	if len(stack) == 0 {
		e.mu.Unlock()
		return nil, fmt.Errorf("mockunit: passthrough outside a replacement body: %w", ErrNotPassthrough)
	}
	f := stack[len(stack)-1]
	un := e.units[f.unit]
	d := e.doubles[f.unit]
	if un == nil || d == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("mockunit: %s: %w", f.unit, ErrNotDoubled)
	}
	if !d.opts.Passthrough {
		e.mu.Unlock()
		return nil, fmt.Errorf("mockunit: %s: %w", f.unit, ErrNotPassthrough)
	}
	entry, found := resolve(un.original, f.name, len(args))
	e.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("mockunit: no original implementation for %s.%s/%d", f.unit, f.name, len(args))
	}
	return invoke(entry.fn, args), nil
}

//goid returns the current goroutine's id, parsed from the header line of a
//runtime stack trace ("goroutine N [...").
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

//Register registers a unit with the Default engine.
func Register(u Unit, funcs ...Replacement) error {
	return defaultEngine.Register(u, funcs...)
}

//MustRegister registers a unit with the Default engine, panicking on error.
func MustRegister(u Unit, funcs ...Replacement) {
	defaultEngine.MustRegister(u, funcs...)
}

//Call dispatches through the Default engine. See UnitEngine.Call.
func Call(u Unit, name string, args ...interface{}) []interface{} {
	return defaultEngine.Call(u, name, args...)
}

//Passthrough invokes the original implementation of the currently executing
//replacement via the Default engine, panicking with ErrNotPassthrough if the
//owning double was not created with Options.Passthrough.
func Passthrough(args ...interface{}) []interface{} {
	returns, err := defaultEngine.Passthrough(args)
	if err != nil {
		panic(err)
	}
	return returns
}
