package enums

import (
	"fmt"
	"strings"
)

// ImportDecision is the user's answer to a duplicate conflict.
type ImportDecision string

const (
	ImportDecisionContinue ImportDecision = "continue"
	ImportDecisionCancel   ImportDecision = "cancel"
)

func (d ImportDecision) IsValid() bool {
	return d == ImportDecisionContinue || d == ImportDecisionCancel
}

func ParseImportDecision(value string) (ImportDecision, error) {
	d := ImportDecision(strings.ToLower(strings.TrimSpace(value)))
	if d.IsValid() {
		return d, nil
	}
	return "", fmt.Errorf("invalid import decision %q", value)
}
