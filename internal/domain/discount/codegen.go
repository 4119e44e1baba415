package discount

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const maxRulePrefixLen = 24

// GenerateCode synthesizes a promotional code from a rule name, an optional
// category and a timestamp. The millisecond timestamp suffix keeps
// auto-generated codes from colliding with each other or with manual ones.
func GenerateCode(rule string, category *uuid.UUID, now time.Time) Code {
	prefix := sanitizeRule(rule)
	if prefix == "" {
		prefix = "AUTO"
	}

	parts := []string{prefix}
	if category != nil {
		parts = append(parts, strings.ToUpper(category.String()[:4]))
	}
	parts = append(parts, strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	return Code(strings.Join(parts, "-"))
}

func sanitizeRule(rule string) string {
	var b strings.Builder
	for _, r := range rule {
		if b.Len() >= maxRulePrefixLen {
			break
		}
		switch {
		case unicode.IsLetter(r) && r < 128:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
		}
	}
	return b.String()
}
