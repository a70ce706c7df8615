package energy

import (
	"fmt"
	"strings"
)

// Cost represents an attack or retreat cost as an energy multiset.
// Colorless entries can be paid with any remaining attachment.
type Cost []Type

// ParseCost parses a comma-separated cost string (e.g., "Fire,Fire,Colorless").
// An empty string is a free cost.
func ParseCost(costStr string) (Cost, error) {
	trimmed := strings.TrimSpace(costStr)
	if trimmed == "" {
		return Cost{}, nil
	}

	parts := strings.Split(trimmed, ",")
	cost := make(Cost, 0, len(parts))
	for _, part := range parts {
		t, err := ParseType(part)
		if err != nil {
			return nil, fmt.Errorf("parse cost %q: %w", costStr, err)
		}
		cost = append(cost, t)
	}
	return cost, nil
}

// String returns the comma-separated representation of the cost.
func (c Cost) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// Counts returns per-type counts for the cost.
func (c Cost) Counts() map[Type]int {
	counts := make(map[Type]int, len(c))
	for _, t := range c {
		counts[t]++
	}
	return counts
}

// CanPay reports whether the attached energies satisfy the cost.
// Each non-Colorless cost entry needs a matching attachment; Colorless
// entries consume whatever attachments remain.
func CanPay(attached []Type, cost Cost) bool {
	return len(Missing(attached, cost)) == 0
}

// Missing returns the cost entries that the attachments cannot cover.
// The result preserves one entry per unpaid cost symbol so callers can
// report the exact shortfall.
func Missing(attached []Type, cost Cost) []Type {
	if len(cost) == 0 {
		return nil
	}

	available := make(map[Type]int, len(attached))
	for _, t := range attached {
		available[t]++
	}

	var missing []Type
	colorless := 0
	for _, t := range cost {
		if t == Colorless {
			colorless++
			continue
		}
		if available[t] > 0 {
			available[t]--
		} else {
			missing = append(missing, t)
		}
	}

	remaining := 0
	for _, n := range available {
		remaining += n
	}
	for i := 0; i < colorless-remaining; i++ {
		missing = append(missing, Colorless)
	}

	return missing
}
