// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tokenizer

import "encoding/json"

// canonicalizeJSON recursively sorts object keys lexicographically and
// re-serialises compactly. If input does not parse as JSON, it returns
// (nil, false) and the caller keeps the original bytes unchanged — JSON
// canonicalisation never rejects an event, it only skips non-JSON input.
//
// encoding/json.Marshal already sorts map[string]any keys lexicographically,
// so decode-then-encode through a generic interface{} is sufficient; no
// custom ordered-map type is needed.
func canonicalizeJSON(input []byte) ([]byte, bool) {
	var v interface{}
	if err := json.Unmarshal(input, &v); err != nil {
		return nil, false
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return out, true
}
