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

// Package nameparse splits a free-text personal name into components.
// It tolerates honorific prefixes, generational and academic suffixes,
// particled surnames, and quoted nicknames. It never fails: anything it
// cannot interpret degrades to naive whitespace splitting.
package nameparse

import "strings"

// Name holds the parsed components of a personal name. Any field may be
// empty.
type Name struct {
	First    string
	Middle   string
	Last     string
	Title    string
	Suffix   string
	Nickname string
}

// titles are honorific prefixes, keyed without trailing dots.
var titles = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true,
	"dr": true, "prof": true, "professor": true, "rev": true,
	"hon": true, "sir": true, "dame": true, "capt": true, "col": true,
	"lt": true, "sgt": true, "fr": true,
}

// suffixes are generational or credential suffixes, keyed without dots.
var suffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
	"phd": true, "md": true, "esq": true, "dds": true, "jd": true,
	"mba": true, "cpa": true, "rn": true,
}

// particles start a compound surname ("Ludwig van Beethoven").
var particles = map[string]bool{
	"van": true, "von": true, "de": true, "del": true, "della": true,
	"der": true, "den": true, "di": true, "da": true, "do": true,
	"dos": true, "du": true, "la": true, "le": true, "st": true,
	"ter": true, "ten": true, "bin": true, "ibn": true, "al": true,
}

// Parse splits fullName into components. Empty or whitespace-only input
// returns an all-empty Name.
func Parse(fullName string) Name {
	var n Name

	s := strings.TrimSpace(fullName)
	if s == "" {
		return n
	}

	s, n.Nickname = extractNickname(s)

	tokens := strings.Fields(strings.ReplaceAll(s, ",", " "))

	// Honorific prefixes, possibly stacked ("Prof. Dr. Ada Byron").
	var titleParts []string
	for len(tokens) > 1 && titles[foldToken(tokens[0])] {
		titleParts = append(titleParts, tokens[0])
		tokens = tokens[1:]
	}
	n.Title = strings.Join(titleParts, " ")

	// Trailing suffixes ("John Smith Jr. PhD").
	var suffixParts []string
	for len(tokens) > 1 && suffixes[foldToken(tokens[len(tokens)-1])] {
		suffixParts = append([]string{tokens[len(tokens)-1]}, suffixParts...)
		tokens = tokens[:len(tokens)-1]
	}
	n.Suffix = strings.Join(suffixParts, " ")

	switch len(tokens) {
	case 0:
		return n
	case 1:
		n.First = tokens[0]
		return n
	case 2:
		n.First = tokens[0]
		n.Last = tokens[1]
		return n
	}

	n.First = tokens[0]
	rest := tokens[1:]

	// A particle anywhere in the remainder starts the surname.
	for i, tok := range rest {
		if particles[foldToken(tok)] {
			n.Middle = strings.Join(rest[:i], " ")
			n.Last = strings.Join(rest[i:], " ")
			return n
		}
	}

	n.Middle = strings.Join(rest[:len(rest)-1], " ")
	n.Last = rest[len(rest)-1]
	return n
}

// extractNickname pulls a quoted or parenthesised nickname out of the
// name, returning the remainder and the nickname.
func extractNickname(s string) (string, string) {
	for _, delims := range [][2]string{{`"`, `"`}, {"(", ")"}} {
		open := strings.Index(s, delims[0])
		if open < 0 {
			continue
		}
		end := strings.Index(s[open+1:], delims[1])
		if end < 0 {
			continue
		}
		nick := strings.TrimSpace(s[open+1 : open+1+end])
		rest := strings.TrimSpace(s[:open] + " " + s[open+1+end+1:])
		if nick != "" {
			return rest, nick
		}
	}
	return s, ""
}

// foldToken lowercases a token and strips trailing dots so "Dr." and
// "dr" compare equal against the lookup tables.
func foldToken(tok string) string {
	return strings.ToLower(strings.TrimRight(tok, "."))
}
