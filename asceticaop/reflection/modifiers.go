package reflection

import (
	"strings"

	"github.com/pkg/errors"
)

type Modifiers uint32

const (
	Public Modifiers = 1 << iota
	Private
	Protected
	Static
	Final
	Synchronized
	Volatile
	Transient
	Native
	Abstract
)

var modifierNames = []struct {
	modifier Modifiers
	name     string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{Transient, "transient"},
	{Volatile, "volatile"},
	{Synchronized, "synchronized"},
	{Native, "native"},
}

// Has reports whether every bit of other is set.
func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

func (m Modifiers) String() string {
	parts := make([]string, 0, 2)
	for _, mn := range modifierNames {
		if m&mn.modifier != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier returns the modifier bit for a keyword such as "static".
func ParseModifier(keyword string) (Modifiers, error) {
	for _, mn := range modifierNames {
		if mn.name == keyword {
			return mn.modifier, nil
		}
	}
	return 0, errors.Errorf("unknown modifier %q", keyword)
}

// IsModifier reports whether keyword names a modifier.
func IsModifier(keyword string) bool {
	_, err := ParseModifier(keyword)
	return err == nil
}
