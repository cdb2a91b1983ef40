package needed

import "strings"

// Listify joins parts with sep, except for the last pair which is joined
// with lastSep: ["a", "b", "c"] becomes "a, b and c".
func Listify(parts []string, sep, lastSep string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	head := strings.Join(parts[:len(parts)-1], sep)
	return head + lastSep + parts[len(parts)-1]
}
