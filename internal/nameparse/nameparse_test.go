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

package nameparse

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Name
	}{
		{
			input: "",
			want:  Name{},
		},
		{
			input: "   ",
			want:  Name{},
		},
		{
			input: "Cher",
			want:  Name{First: "Cher"},
		},
		{
			input: "John Smith",
			want:  Name{First: "John", Last: "Smith"},
		},
		{
			input: "Dr. Jane Smith",
			want:  Name{Title: "Dr.", First: "Jane", Last: "Smith"},
		},
		{
			input: "Prof. Dr. Ada Byron",
			want:  Name{Title: "Prof. Dr.", First: "Ada", Last: "Byron"},
		},
		{
			input: "John Smith Jr.",
			want:  Name{First: "John", Last: "Smith", Suffix: "Jr."},
		},
		{
			input: "Henry Ford III",
			want:  Name{First: "Henry", Last: "Ford", Suffix: "III"},
		},
		{
			input: "Dr. Martin Luther King Jr.",
			want:  Name{Title: "Dr.", First: "Martin", Middle: "Luther", Last: "King", Suffix: "Jr."},
		},
		{
			input: "Ludwig van Beethoven",
			want:  Name{First: "Ludwig", Last: "van Beethoven"},
		},
		{
			input: "Oscar de la Renta",
			want:  Name{First: "Oscar", Last: "de la Renta"},
		},
		{
			input: "Mary-Jane Watson",
			want:  Name{First: "Mary-Jane", Last: "Watson"},
		},
		{
			input: `Robert "Bob" Jones`,
			want:  Name{First: "Robert", Last: "Jones", Nickname: "Bob"},
		},
		{
			input: "William (Bill) Gates",
			want:  Name{First: "William", Last: "Gates", Nickname: "Bill"},
		},
		{
			input: "Anna Maria Louisa Mozart",
			want:  Name{First: "Anna", Middle: "Maria Louisa", Last: "Mozart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseNeverEmptyFirst verifies that any non-blank input yields at
// least a first name, the naive-split fallback contract.
func TestParseNeverEmptyFirst(t *testing.T) {
	inputs := []string{"x", "Dr.", "!!!", "a b c d e f g"}
	for _, in := range inputs {
		if got := Parse(in); got.First == "" {
			t.Errorf("Parse(%q).First is empty: %+v", in, got)
		}
	}
}
