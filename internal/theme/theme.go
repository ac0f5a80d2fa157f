// Package theme tracks the light/dark appearance setting and provides the
// style tokens derived from it.
package theme

import (
	"fmt"
	"strings"
)

// Theme is the appearance setting.
type Theme string

// Supported themes.
const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when nothing has been stored yet.
const Default = Light

// Parse converts s into a Theme.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("unknown theme %q (expected light or dark)", s)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string {
	return string(t)
}
