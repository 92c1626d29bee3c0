// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package descriptor

import (
	"maps"
	"slices"
)

// Extensions are deployment-specific tuning options merged into a
// descriptor after Build.  Nil values are skipped.
type Extensions map[string]*string

// Validate rejects keys that Build owns.
func (e Extensions) Validate() error {
	for _, key := range slices.Sorted(maps.Keys(e)) {
		if slices.Contains(reservedKeys, key) {
			return errorHelper.InvalidArgument("option %q is reserved and cannot be overridden", key)
		}
	}
	return nil
}

// Apply merges the extensions into d.
func (e Extensions) Apply(d Descriptor) (Descriptor, error) {
	if err := e.Validate(); err != nil {
		return Descriptor{}, err
	}
	for _, key := range slices.Sorted(maps.Keys(e)) {
		d = WithOptional(d, key, e[key])
	}
	return d, nil
}
