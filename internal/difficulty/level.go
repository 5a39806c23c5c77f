// Package difficulty implements the adaptive difficulty policy used to pick
// the level of a new quiz and the level recommended after a result.
package difficulty

import (
	"fmt"
	"strings"
)

// Level is a quiz difficulty. Levels are totally ordered from Easy to Expert.
type Level int

const (
	Easy Level = iota
	Medium
	Hard
	Expert
)

var levelNames = [...]string{"EASY", "MEDIUM", "HARD", "EXPERT"}

// All returns every level in ascending order.
func All() []Level {
	return []Level{Easy, Medium, Hard, Expert}
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Easy && l <= Expert
}

// Up returns the next harder level, clamped at Expert.
func (l Level) Up() Level {
	if l >= Expert {
		return Expert
	}
	return l + 1
}

// Down returns the next easier level, clamped at Easy.
func (l Level) Down() Level {
	if l <= Easy {
		return Easy
	}
	return l - 1
}

// Parse converts a level name (case-insensitive) to a Level.
func Parse(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
