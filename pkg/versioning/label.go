package versioning

import (
	"fmt"
	"strconv"
	"strings"
)

// IncrementLabel bumps the major version: v1.0 -> v2.0, v2.3 -> v3.0.
// Unparseable labels fall back to v2.0.
func IncrementLabel(label string) string {
	major, ok := parseMajor(label)
	if !ok {
		return "v2.0"
	}
	return fmt.Sprintf("v%d.0", major+1)
}

// DecrementLabel lowers the major version with a floor of v1.0.
func DecrementLabel(label string) string {
	major, ok := parseMajor(label)
	if !ok || major <= 1 {
		return "v1.0"
	}
	return fmt.Sprintf("v%d.0", major-1)
}

func parseMajor(label string) (int, bool) {
	v := strings.TrimPrefix(strings.TrimSpace(label), "v")
	parts := strings.Split(v, ".")
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return major, true
}
