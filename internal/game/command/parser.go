package command

import (
	"strings"
	"unicode"
)

// ParseResult is one line of player input split into a command word and its
// arguments.
type ParseResult struct {
	// Command is the first word, lowercased.
	Command string
	// Args are the remaining whitespace-separated words, case preserved.
	Args []string
	// RawArgs is everything after the command word, trimmed, so multi-word
	// place names such as "green meadow" survive intact.
	RawArgs string
}

// Parse splits line at its first whitespace.
//
// Postcondition: Command is empty only when line is blank.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	word, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		word, rest = line[:i], strings.TrimSpace(line[i:])
	}

	out := ParseResult{Command: strings.ToLower(word), RawArgs: rest}
	if rest != "" {
		out.Args = strings.Fields(rest)
	}
	return out
}
