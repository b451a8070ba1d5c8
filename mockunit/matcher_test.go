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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchArgs(t *testing.T) {
	tests := []struct {
		name    string
		pattern []interface{}
		args    []interface{}
		matches bool
	}{
		{"LiteralsEqual", []interface{}{"a", 1}, []interface{}{"a", 1}, true},
		{"LiteralsDiffer", []interface{}{"a", 1}, []interface{}{"a", 2}, false},
		{"DeepEquality", []interface{}{[]int{1, 2}}, []interface{}{[]int{1, 2}}, true},
		{"WildcardMatchesAnything", []interface{}{Wildcard()}, []interface{}{struct{ X int }{42}}, true},
		{"WildcardIsArityStrict", []interface{}{Wildcard()}, []interface{}{"a", "b"}, false},
		{"ShortPatternNeverMatchesLongerCall", []interface{}{"a"}, []interface{}{"a", "b"}, false},
		{"LongPatternNeverMatchesShorterCall", []interface{}{"a", Wildcard()}, []interface{}{"a"}, false},
		{"EmptyPatternMatchesNiladicCall", nil, nil, true},
		{"MixedLiteralAndWildcard", []interface{}{"a", Wildcard()}, []interface{}{"a", 99}, true},
		{"PredicateFunc", []interface{}{func(i int) bool { return i > 10 }}, []interface{}{11}, true},
		{"PredicateFuncRejects", []interface{}{func(i int) bool { return i > 10 }}, []interface{}{10}, false},
		{"PredicateWrongType", []interface{}{func(i int) bool { return true }}, []interface{}{"str"}, false},
		{"NilLiteralMatchesNil", []interface{}{nil}, []interface{}{nil}, true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.matches, matchArgs(test.pattern, test.args))
		})
	}
}

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		arg     interface{}
		matches bool
	}{
		{"EqlEqual", Eql("x"), "x", true},
		{"EqlUnequal", Eql("x"), "y", false},
		{"NilOnNil", Nil(), nil, true},
		{"NilOnNilSlice", Nil(), []string(nil), true},
		{"NilOnValue", Nil(), 0, false},
		{"IsAAssignable", IsA(reflect.TypeOf("")), "any string", true},
		{"IsANotAssignable", IsA(reflect.TypeOf("")), 42, false},
		{"IsAFromValue", IsA(0), 42, true},
		{"IsAInterface", IsA(reflect.TypeOf((*error)(nil)).Elem()), fmt.Errorf("boom"), true},
		{"AllEmpty", All(), "anything", true},
		{"AllBoth", All(IsA(0), Eql(1)), 1, true},
		{"AllOneFails", All(IsA(0), Eql(1)), 2, false},
		{"AnyEmpty", Any(), "anything", false},
		{"AnyOne", Any(Eql("a"), Eql("b")), "b", true},
		{"NotInverts", Not(Eql("a")), "b", true},
		{"FuncExplained", Func(func(s string) bool { return len(s) > 2 }, "longer than 2"), "abc", true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.matches, test.matcher.Matches(test.arg))
		})
	}
}

func TestMatcherStrings(t *testing.T) {
	assert.Equal(t, "_", fmt.Sprint(Wildcard()))
	assert.Equal(t, "Eql(x)", fmt.Sprint(Eql("x")))
	assert.Equal(t, "Nil", fmt.Sprint(Nil()))
	assert.Equal(t, "Not(Eql(x))", fmt.Sprint(Not(Eql("x"))))
	assert.Equal(t, "All{Eql(1),Nil}", fmt.Sprint(All(Eql(1), Nil())))
	assert.Equal(t, "longer than 2", fmt.Sprint(Func(func(s string) bool { return len(s) > 2 }, "longer than 2")))
}

func TestToMatcher(t *testing.T) {
	assert.Equal(t, Wildcard(), toMatcher(Wildcard()), "matchers pass through")
	assert.True(t, toMatcher(reflect.TypeOf(0)).Matches(42), "a reflect.Type becomes IsA")
	assert.True(t, toMatcher(func(i int) bool { return i == 7 }).Matches(7), "a func becomes a predicate")
	assert.True(t, toMatcher("x").Matches("x"), "anything else matches by equality")
}
