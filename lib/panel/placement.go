package panel

import (
	"fmt"
	"strings"
)

// Placement is where the tooltip opens relative to its label.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
)

func ParsePlacement(s string) (Placement, error) {
	switch p := Placement(strings.ToLower(strings.TrimSpace(s))); p {
	case PlacementTop, PlacementBottom, PlacementLeft, PlacementRight:
		return p, nil
	case "":
		return PlacementBottom, nil
	default:
		return "", fmt.Errorf("unknown tooltip placement: %q", s)
	}
}
