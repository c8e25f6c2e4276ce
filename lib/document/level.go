// Copyright 2026 OneOffTech
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

package document

import (
	"fmt"
	"strings"
)

// Level is the extraction granularity axis. It controls how deep the
// document tree is materialized: a node's children are populated iff the
// requested level is >= the children's level.
//
// The zero value means "unspecified" so callers can tell an explicit
// LevelPage apart from an unset field.
type Level int

const (
	levelUnset Level = iota

	LevelPage
	LevelParagraph
	LevelBlock
	LevelLine
	LevelSpan
	LevelWord
	LevelCharacter
)

var levelNames = map[Level]string{
	LevelPage:      "page",
	LevelParagraph: "paragraph",
	LevelBlock:     "block",
	LevelLine:      "line",
	LevelSpan:      "span",
	LevelWord:      "word",
	LevelCharacter: "character",
}

// String returns the lowercase wire name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// Covers reports whether a request at level l materializes children
// declared at the given child level.
func (l Level) Covers(child Level) bool {
	return l >= child
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return levelUnset, fmt.Errorf("unknown extraction level %q (expected one of %s)", s, strings.Join(LevelNames(), ", "))
}

// LevelNames returns all level names in ascending granularity order.
func LevelNames() []string {
	names := make([]string, 0, len(levelNames))
	for l := LevelPage; l <= LevelCharacter; l++ {
		names = append(names, levelNames[l])
	}
	return names
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
