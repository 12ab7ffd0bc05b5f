package utils

import "strings"

// ParseOptions turns trailing command-line tokens into named parameters.
//
// "--key=value" sets key immediately, "--key" waits for the next plain token
// to become its value, and plain tokens without a pending key are dropped.
// A flag followed by another flag, or a dangling flag at the end, yields no
// entry at all.
func ParseOptions(tokens []string) map[string]string {
	opts := make(map[string]string)
	pending := ""

	for _, tok := range tokens {
		if strings.HasPrefix(tok, "--") {
			flag := strings.TrimPrefix(tok, "--")
			if key, value, ok := strings.Cut(flag, "="); ok {
				opts[key] = value
				pending = ""
				continue
			}
			pending = flag
			continue
		}

		if pending != "" {
			opts[pending] = tok
			pending = ""
		}
	}

	return opts
}
