package whitelist

import (
	"strings"

	"github.com/wrdo/mailrouter/internal/utils"
)

// Checker answers whether a recipient address passes a comma separated whitelist.
type Checker struct {
	open    bool
	entries []string
}

// NewChecker parses the whitelist once. A blank list lets every address through.
func NewChecker(list string) *Checker {
	if strings.TrimSpace(list) == "" {
		return &Checker{open: true}
	}
	return &Checker{entries: utils.SplitAndTrim(list)}
}

// IsAllowed matches exactly, case included, after the entries have been trimmed.
func (c *Checker) IsAllowed(address string) bool {
	if c.open {
		return true
	}
	return utils.IsStringInSlice(address, c.entries)
}

// Entries returns the parsed list, empty when the checker is open.
func (c *Checker) Entries() []string {
	return c.entries
}

func IsAllowed(address, list string) bool {
	return NewChecker(list).IsAllowed(address)
}
