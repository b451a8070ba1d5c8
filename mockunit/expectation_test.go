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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectations(t *testing.T) {
	tests := []struct {
		expect Expectation
		count  int
		met    bool
	}{
		{Exactly(2), 2, true},
		{Exactly(2), 3, false},
		{Once(), 1, true},
		{Once(), 0, false},
		{Twice(), 2, true},
		{Never(), 0, true},
		{Never(), 1, false},
		{AtLeast(2), 2, true},
		{AtLeast(2), 1, false},
		{AtMost(2), 2, true},
		{AtMost(2), 3, false},
		{Between(1, 3), 2, true},
		{Between(1, 3), 0, false},
		{Between(1, 3), 4, false},
	}

	for _, test := range tests {
		test := test
		t.Run(fmt.Sprintf("%v/%d", test.expect, test.count), func(t *testing.T) {
			assert.Equal(t, test.met, test.expect.Met(test.count))
		})
	}
}

func TestExpectationStrings(t *testing.T) {
	assert.Equal(t, "exactly 3", fmt.Sprint(Exactly(3)))
	assert.Equal(t, "never", fmt.Sprint(Never()))
	assert.Equal(t, "at least 2", fmt.Sprint(AtLeast(2)))
	assert.Equal(t, "at most 2", fmt.Sprint(AtMost(2)))
	assert.Equal(t, "between 1 and 3", fmt.Sprint(Between(1, 3)))
}
