// Package intname provides the shared "named integer constant" lookup table
// idiom used across the types packages for Stringer-style rendering of
// Mach-O and code-signature enums.
package intname

import "fmt"

// Pair associates a raw integer value with its human-readable name.
type Pair struct {
	Value uint32
	Name  string
}

// Lookup renders value using table, falling back to a hex literal (or Go
// syntax hex literal when goSyntax is set) when no entry matches.
func Lookup(value uint32, table []Pair, goSyntax bool) string {
	for _, p := range table {
		if p.Value == value {
			return p.Name
		}
	}
	if goSyntax {
		return fmt.Sprintf("0x%x", value)
	}
	return fmt.Sprintf("%#x", value)
}
