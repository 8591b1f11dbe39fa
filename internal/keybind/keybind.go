// Package keybind maps key notations such as "ctrl+a" to the single
// control byte a terminal sends for them.
package keybind

import (
	"fmt"
	"strings"
)

// Parse returns the byte produced by notation. Only keys that send one
// byte are accepted since the console reserves exactly one byte.
func Parse(notation string) (byte, error) {
	notation = strings.TrimSpace(strings.ToLower(notation))

	switch notation {
	case "enter", "return":
		return 0x0d, nil
	case "escape", "esc":
		return 0x1b, nil
	case "tab":
		return 0x09, nil
	case "backspace":
		return 0x7f, nil
	}

	mod, key, ok := strings.Cut(notation, "+")
	if !ok {
		return 0, fmt.Errorf("keybind: unknown key notation: %q", notation)
	}
	if mod != "ctrl" && mod != "control" {
		return 0, fmt.Errorf("keybind: unknown modifier: %q", mod)
	}

	switch key {
	case "\\":
		return 0x1c, nil
	case "[":
		return 0x1b, nil
	case "]":
		return 0x1d, nil
	case "^":
		return 0x1e, nil
	case "_":
		return 0x1f, nil
	case "@", "space":
		return 0x00, nil
	}
	if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		return key[0] - 0x60, nil
	}

	return 0, fmt.Errorf("keybind: unknown key notation: %q", notation)
}

// Name returns the label shown to users for a control byte, for example
// "Ctrl-A" for 0x01.
func Name(b byte) string {
	switch {
	case b == 0x00:
		return "Ctrl-@"
	case b == 0x09:
		return "Tab"
	case b == 0x0d:
		return "Enter"
	case b == 0x1b:
		return "Esc"
	case b >= 0x01 && b <= 0x1a:
		return "Ctrl-" + string(rune('A'+b-1))
	case b >= 0x1c && b <= 0x1f:
		return "Ctrl-" + `\]^_`[b-0x1c:b-0x1b]
	case b == 0x7f:
		return "Backspace"
	default:
		return fmt.Sprintf("0x%02X", b)
	}
}
