package config

import (
	"fmt"
	"strings"
)

// ParseSize parses a human-readable byte size ("64KB", "4MB", "1GB" or a
// plain number) as used for socket buffer settings. It returns def when s
// is empty or cannot be parsed.
func ParseSize(s string, def int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def
	}

	var multiplier int64 = 1
	for _, unit := range []struct {
		suffix string
		size   int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.size
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	var val int64
	var rest string
	if n, _ := fmt.Sscanf(s, "%d%s", &val, &rest); n != 1 || val < 0 {
		return def
	}
	return val * multiplier
}
