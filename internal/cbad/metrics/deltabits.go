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

// DeltaBits is a diagnostic measuring the compressed bytes saved by
// modelling B and W jointly rather than independently: cBW - (cB + cW).
// Negative values indicate shared redundancy between baseline and window;
// near-zero or positive values indicate the window introduced material
// the baseline's dictionary did not already capture.
func DeltaBits(cB, cW, cBW int) int {
	return cBW - (cB + cW)
}
