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

package compression

import "fmt"

// New builds the named adapter. Unknown names return an error rather than
// silently defaulting, matching the factory pattern used elsewhere in this
// codebase for pluggable backends.
func New(name string) (Adapter, error) {
	switch name {
	case "zstd", "":
		return NewZstd(0), nil
	case "lz4":
		return NewLz4(0), nil
	case "gzip":
		return NewGzip(0), nil
	case "flate":
		return NewFlate(0), nil
	default:
		return nil, fmt.Errorf("compression: unknown adapter %q", name)
	}
}
