// Copyright (c) 2026 John Earle
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

package organization

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Microsoft", "microsoft"},
		{"Microsoft Corporation", "microsoft"},
		{"Microsoft Corp.", "microsoft"},
		{"The Microsoft Corporation, Inc.", "microsoft"},
		{"Acme Widgets LLC", "acme widgets"},
		{"Smith & Sons, Ltd.", "smith sons"},
		{"Coca-Cola Company", "coca cola"},
		{"  Initech  ", "initech"},
		{"", ""},
		{"The The", "the"},
		{"The The X", "x"},
		{"Co. The Beatles", "beatles"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies normalize(normalize(x)) == normalize(x).
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Microsoft Corporation, Inc.",
		"Acme Widgets LLC",
		"Smith & Sons, Ltd.",
		"Coca-Cola Company",
		"plain name",
		"The The X",
		"Co. The Beatles",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

// TestNormalizeEquivalence covers the legal-suffix equivalence the
// resolver relies on.
func TestNormalizeEquivalence(t *testing.T) {
	if Normalize("Microsoft Corporation") != Normalize("Microsoft Corp.") {
		t.Error(`"Microsoft Corporation" and "Microsoft Corp." should normalize equal`)
	}
	if Normalize("The Microsoft Corp") != Normalize("Microsoft Corporation, Inc.") {
		t.Error(`"The Microsoft Corp" and "Microsoft Corporation, Inc." should normalize equal`)
	}
}
