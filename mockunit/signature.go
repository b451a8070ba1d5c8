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
)

//compatibleSignatures reports whether a replacement func type can stand in
//for the original: same shape, inputs assignable from the original's inputs
//and outputs assignable to the original's outputs.
func compatibleSignatures(original, replacement reflect.Type) error {
	if err := compatibleInputs(original, replacement); err != nil {
		return err
	}
	return compatibleOutputs(original, replacement)
}

func compatibleInputs(original, replacement reflect.Type) error {
	if replacement.IsVariadic() != original.IsVariadic() {
		return fmt.Errorf("%v expects %v to have variadic=%v", original, replacement, original.IsVariadic())
	}
	if replacement.NumIn() != original.NumIn() {
		return fmt.Errorf("%v expects %v to have %d arguments, found %d", original, replacement, original.NumIn(), replacement.NumIn())
	}
	for i := 0; i < replacement.NumIn(); i++ {
		if !original.In(i).AssignableTo(replacement.In(i)) {
			return fmt.Errorf("%v requires %v arg %d to be assignable from %v", original, replacement, i, original.In(i))
		}
	}
	return nil
}

func compatibleOutputs(original, replacement reflect.Type) error {
	if replacement.NumOut() != original.NumOut() {
		return fmt.Errorf("%v expects %v to have %d return values, found %d", original, replacement, original.NumOut(), replacement.NumOut())
	}
	for i := 0; i < replacement.NumOut(); i++ {
		if !replacement.Out(i).AssignableTo(original.Out(i)) {
			return fmt.Errorf("%v expects return value %d of %v to be assignable to %v", original, i, replacement, original.Out(i))
		}
	}
	return nil
}
