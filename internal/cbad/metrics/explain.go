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

import (
	"fmt"
	"strings"
)

// Explain renders a deterministic, templated evidence summary for a
// decision: confidence, compression evidence, entropy evidence, NCD
// score, and a short interpretation. It never varies with wall-clock time
// or hostnames so two runs on identical metrics produce identical text.
func Explain(m Metrics, isAnomaly bool) string {
	var b strings.Builder

	verdict := "NOT DETECTED"
	if isAnomaly {
		verdict = "DETECTED"
	}
	fmt.Fprintf(&b, "Anomaly %s with %.1f%% confidence (p=%.3f):\n\n", verdict, m.Confidence*100, m.PValue)

	b.WriteString("COMPRESSION EVIDENCE:\n")
	fmt.Fprintf(&b, "- Baseline compression ratio: %.1fx (normal pattern)\n", m.BaselineRatio)
	fmt.Fprintf(&b, "- Window compression ratio: %.1fx (current pattern)\n", m.WindowRatio)
	fmt.Fprintf(&b, "- Change: %+.0f%% compression efficiency\n", m.DeltaRatio*100)

	b.WriteString("\nENTROPY EVIDENCE:\n")
	fmt.Fprintf(&b, "- Baseline entropy: %.1f bits/byte (structured data)\n", m.BaselineEntropy)
	fmt.Fprintf(&b, "- Window entropy: %.1f bits/byte (current randomness)\n", m.WindowEntropy)
	fmt.Fprintf(&b, "- Change: %+.0f%% randomness\n", m.DeltaEntropy*100)

	fmt.Fprintf(&b, "\nNCD SCORE: %.2f (", m.NCD)
	switch {
	case m.NCD < 0.3:
		b.WriteString("low dissimilarity")
	case m.NCD < 0.7:
		b.WriteString("moderate dissimilarity")
	default:
		b.WriteString("high dissimilarity")
	}
	b.WriteString(")\n")

	if isAnomaly {
		b.WriteString("\nINTERPRETATION: ")
		if m.DeltaRatio < -0.5 {
			b.WriteString("Significant degradation in compression efficiency indicates unstructured or anomalous data patterns. ")
		}
		if m.DeltaEntropy > 0.5 {
			b.WriteString("Increased randomness suggests introduction of unexpected data structures. ")
		}
		if m.NCD > 0.7 {
			b.WriteString("High NCD score indicates substantial dissimilarity from baseline patterns.")
		}
	} else {
		b.WriteString("\nINTERPRETATION: Data patterns remain consistent with baseline expectations.")
	}

	return b.String()
}
