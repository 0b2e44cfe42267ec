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

package metrics

// CompressionRatio returns |X| / |C(X)|; a ratio of 1 when X is empty
// (compressed size is defined as 0 for empty input, which would divide by
// zero, so the empty case is special-cased directly).
func CompressionRatio(rawLen, compressedLen int) float64 {
	if rawLen == 0 {
		return 1
	}
	if compressedLen == 0 {
		return 1
	}
	return float64(rawLen) / float64(compressedLen)
}

// DeltaRatio returns the relative change in compression ratio of window
// against baseline.
func DeltaRatio(baselineRatio, windowRatio float64) float64 {
	if baselineRatio == 0 {
		return 0
	}
	return (windowRatio - baselineRatio) / baselineRatio
}
