package utils

import (
	"strconv"
	"strings"
)

// QueryInt parses a query value, returning def when it is empty or not a number.
func QueryInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}
