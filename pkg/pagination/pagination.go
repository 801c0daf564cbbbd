package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit applies when the caller sends no limit.
	DefaultLimit = 50
	// MaxLimit caps a single page.
	MaxLimit = 500
)

// Params holds offset pagination inputs.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Parse reads raw limit and offset query values. Empty values use defaults.
func Parse(rawLimit, rawOffset string) (Params, error) {
	var p Params
	if v := strings.TrimSpace(rawLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Params{}, fmt.Errorf("invalid limit %q", rawLimit)
		}
		p.Limit = n
	}
	if v := strings.TrimSpace(rawOffset); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Params{}, fmt.Errorf("invalid offset %q", rawOffset)
		}
		p.Offset = n
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p, nil
}

// Window returns the [start, end) bounds of the page within total items.
func (p Params) Window(total int) (start, end int) {
	start = p.Offset
	if start > total {
		start = total
	}
	end = start + NormalizeLimit(p.Limit)
	if end > total {
		end = total
	}
	return start, end
}

// Page slices items to the requested window.
func Page[T any](items []T, p Params) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}
