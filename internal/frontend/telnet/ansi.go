// Package telnet serves the arena over a line-based Telnet connection with
// ANSI styling.
package telnet

import (
	"fmt"
	"strings"
)

// ANSI escape codes used by the arena renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// HealthColor picks green, yellow, or red for a current/max HP pair.
func HealthColor(cur, max int) string {
	if max <= 0 {
		return Red
	}
	switch pct := cur * 100 / max; {
	case pct > 50:
		return Green
	case pct > 20:
		return Yellow
	default:
		return Red
	}
}

// HealthBar renders cur/max as a bracketed bar of width cells, colored by HealthColor.
//
// Precondition: width >= 1.
// Postcondition: StripANSI of the result is exactly width+2 runes plus the numeric suffix.
func HealthBar(cur, max, width int) string {
	if cur < 0 {
		cur = 0
	}
	filled := 0
	if max > 0 {
		filled = (cur*width + max - 1) / max
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("[%s] %d/%d", Colorize(HealthColor(cur, max), bar), cur, max)
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
