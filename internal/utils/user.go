package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// RandomAvatar picks one of the 70 pravatar portraits.
func RandomAvatar() string {
	return fmt.Sprintf("https://i.pravatar.cc/150?img=%d", rand.Intn(70)+1)
}

// NormalizeContent trims surrounding whitespace and returns the text with its length in runes.
func NormalizeContent(s string) (string, int) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s)
}

// LikePattern escapes s for use inside a SQL LIKE pattern with '\' as the escape character.
func LikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
