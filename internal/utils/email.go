package utils

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/internal/logger"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the trimmed address against a shape-only pattern: something@something.tld
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ParseAndValidateEmails splits a comma separated address list and keeps only the valid
// entries, in their original order. Dropped entries are reported with a single warning.
func ParseAndValidateEmails(log logger.Logger, csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}

	candidates := SplitAndTrim(csv)
	valid := make([]string, 0, len(candidates))
	invalid := make([]string, 0)
	for _, candidate := range candidates {
		if IsValidEmail(candidate) {
			valid = append(valid, candidate)
		} else {
			invalid = append(invalid, candidate)
		}
	}

	if len(invalid) > 0 && log != nil {
		log.Warn("Dropping invalid email addresses", zap.Strings("invalid", invalid))
	}
	return valid
}

// FormatSender renders "Name <address>" or just the address when there is no display name.
func FormatSender(fromName, from string) string {
	if fromName != "" {
		return fromName + " <" + from + ">"
	}
	return from
}
