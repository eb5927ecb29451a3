// Package validate holds the pure input predicates shared by the chat core
// and its transport adapters.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// IsRealString reports whether s is non-empty after trimming whitespace.
// Names, rooms and message text must all pass this before they reach the
// presence core.
func IsRealString(s string) bool {
	return v.Var(strings.TrimSpace(s), "required") == nil
}
