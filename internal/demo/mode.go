package demo

import (
	"fmt"
	"strings"
)

// Mode selects how a batch schedules its image fetches.
type Mode string

const (
	// ModeConcurrent dispatches every fetch at once on an unbounded queue.
	ModeConcurrent Mode = "concurrent"
	// ModeSerial runs fetches one after the other in submission order.
	ModeSerial Mode = "serial"
	// ModeBlocks adds plain closures to an operation queue.
	ModeBlocks Mode = "blocks"
	// ModeOperations submits explicit tasks with completion callbacks and
	// a dependency chain.
	ModeOperations Mode = "operations"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeConcurrent, ModeSerial, ModeBlocks, ModeOperations}

// ParseMode converts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want one of %s)", s, modeNames())
}

// Description returns a one-line explanation of the mode.
func (m Mode) Description() string {
	switch m {
	case ModeConcurrent:
		return "all fetches dispatched at once, images appear as they arrive"
	case ModeSerial:
		return "one fetch at a time, images appear in order"
	case ModeBlocks:
		return "closures added to an operation queue"
	case ModeOperations:
		return "operations with completion callbacks; 3 waits for 2, 2 waits for 1"
	default:
		return ""
	}
}

func modeNames() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
