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
	"reflect"
	"strings"
)

//Matcher matches a single recorded argument in a call pattern.
type Matcher interface {

	//Matches returns true if arg matches this matcher
	Matches(arg interface{}) bool
}

//toMatcher converts one position of a call pattern to a Matcher.
//
//A Matcher is used as is. A reflect.Type becomes IsA. A func becomes a
//predicate via Func. Anything else matches by deep equality via Eql.
func toMatcher(pattern interface{}) Matcher {
	switch typed := pattern.(type) {
	case Matcher:
		return typed
	case reflect.Type:
		return IsA(typed)
	default:
		if pattern != nil && reflect.TypeOf(pattern).Kind() == reflect.Func {
			return Func(pattern)
		}
		return Eql(pattern)
	}
}

//matchArgs matches a call pattern position-wise against a recorded argument
//list. Arity is strict: a pattern never matches a call of different arity,
//wildcards included.
func matchArgs(pattern []interface{}, args []interface{}) bool {
	if len(pattern) != len(args) {
		return false
	}
	for i, p := range pattern {
		if !toMatcher(p).Matches(args[i]) {
			return false
		}
	}
	return true
}

type wildcardMatcher struct{}

func (wildcardMatcher) Matches(interface{}) bool {
	return true
}

func (wildcardMatcher) String() string {
	return "_"
}

var singletonWildcard = wildcardMatcher{}

//Wildcard matches any single argument in that position.
func Wildcard() Matcher {
	return singletonWildcard
}

// Eql matches a single argument v via reflect.DeepEqual
func Eql(v interface{}) Matcher {
	return Func(func(arg interface{}) bool {
		return reflect.DeepEqual(arg, v)
	}, "Eql", "(", v, ")")
}

type funcMatcher struct {
	reflect.Value
	explanation string
}

func (f funcMatcher) String() string {
	return f.explanation
}

func (f funcMatcher) Matches(arg interface{}) bool {
	ft := f.Value.Type()
	if ft.Kind() != reflect.Func || ft.NumIn() != 1 || ft.NumOut() != 1 || ft.Out(0).Kind() != reflect.Bool {
		return false
	}
	in := ft.In(0)
	var av reflect.Value
	if arg == nil {
		av = reflect.Zero(in)
	} else {
		av = reflect.ValueOf(arg)
		if !av.Type().AssignableTo(in) {
			return false
		}
	}
	return f.Call([]reflect.Value{av})[0].Interface().(bool)
}

//Func returns a matcher from the arbitrary predicate f, which must be a
//func(x T) bool where T is assignable from the recorded argument.
//Custom matchers will generally be a wrapper around Func.
//
//Optionally include an explanation that will be formatted to string to
//describe what is being matched.
func Func(f interface{}, explanation ...interface{}) Matcher {
	fv := reflect.ValueOf(f)

	var explainString string
	if len(explanation) == 0 {
		explainString = fmt.Sprintf("%T", f)
	} else {
		explainString = fmt.Sprint(explanation...)
	}

	return funcMatcher{fv, explainString}
}

type nilMatcher struct{}

func (n nilMatcher) String() string {
	return "Nil"
}

func (n nilMatcher) Matches(arg interface{}) bool {
	if arg == nil {
		return true
	}

	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

var singletonNilMatcher = nilMatcher{}

// Nil matches a single argument of any nil-able type to be nil (or equivalent)
func Nil() Matcher {
	return singletonNilMatcher
}

//IsA matches a single argument if the supplied argument is AssignableTo or
//Implements the reflect.Type t.
//
// if t is not already a reflect.Type it will be converted with reflect.TypeOf
func IsA(t interface{}) Matcher {
	rt, isType := t.(reflect.Type)
	if !isType {
		rt = reflect.TypeOf(t)
	}
	return Func(func(x interface{}) bool {
		if x == nil {
			return false
		}
		argT := reflect.TypeOf(x)
		if rt.Kind() == reflect.Interface {
			return argT.Implements(rt)
		}
		return argT.AssignableTo(rt)
	}, "IsA", "(", rt, ")")
}

type matcherList []Matcher

func (l matcherList) toString(prefix string, lRune rune, rRune rune) string {
	s := strings.Builder{}
	s.WriteString(prefix)
	if len(l) > 0 {
		s.WriteRune(lRune)
		for i, m := range l {
			if i > 0 {
				s.WriteRune(',')
			}
			s.WriteString(fmt.Sprint(m))
		}
		s.WriteRune(rRune)
	}
	return s.String()
}

type andMatcher struct {
	matcherList
}

func (a andMatcher) String() string {
	return a.toString("All", '{', '}')
}

func (a andMatcher) Matches(arg interface{}) bool {
	for _, m := range a.matcherList {
		if !m.Matches(arg) {
			return false
		}
	}
	return true
}

// All matches if all the matchers match (returns true for no matchers)
func All(matchers ...Matcher) Matcher {
	return andMatcher{matchers}
}

type orMatcher struct {
	matcherList
}

func (o orMatcher) String() string {
	return o.toString("Any", '{', '}')
}

func (o orMatcher) Matches(arg interface{}) bool {
	for _, m := range o.matcherList {
		if m.Matches(arg) {
			return true
		}
	}
	return false
}

// Any matches if any one of matchers match (returns false for no matchers)
func Any(matchers ...Matcher) Matcher {
	return orMatcher{matchers}
}

type notMatcher struct {
	Matcher
}

func (nm notMatcher) String() string {
	return fmt.Sprintf("Not(%v)", nm.Matcher)
}

func (nm notMatcher) Matches(arg interface{}) bool {
	return !nm.Matcher.Matches(arg)
}

// Not negates matcher
func Not(matcher Matcher) Matcher {
	return notMatcher{matcher}
}
