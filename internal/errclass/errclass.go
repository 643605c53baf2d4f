// Package errclass sorts model and transport failures into a few categories
// a student can act on, and words each one kindly.
package errclass

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/llm"
)

// Category is a student-facing failure class.
type Category int

const (
	Generic Category = iota
	BadCredential
	QuotaExceeded
	Connectivity
	SafetyBlocked
)

func (c Category) String() string {
	switch c {
	case BadCredential:
		return "bad_credential"
	case QuotaExceeded:
		return "quota_exceeded"
	case Connectivity:
		return "connectivity"
	case SafetyBlocked:
		return "safety_blocked"
	default:
		return "generic"
	}
}

type rule struct {
	needles []string
	cat     Category
}

// Checked in order; the first rule with a matching needle wins.
var rules = []rule{
	{[]string{"api_key_invalid", "api key not valid"}, BadCredential},
	{[]string{"quota", "rate limit", "resource_exhausted"}, QuotaExceeded},
	{[]string{"network", "fetch", "connection"}, Connectivity},
	{[]string{"safety", "blocked"}, SafetyBlocked},
}

// Classify returns the category for err. A nil error is Generic.
func Classify(err error) Category {
	if err == nil {
		return Generic
	}

	var (
		rateErr  *llm.ErrRateLimit
		authErr  *llm.ErrUnauthorized
		blockErr *llm.ErrContentBlocked
		netErr   net.Error
	)
	switch {
	case errors.Is(err, buddy.ErrMissingCredential), errors.As(err, &authErr):
		return BadCredential
	case errors.As(err, &rateErr):
		return QuotaExceeded
	case errors.As(err, &blockErr):
		return SafetyBlocked
	case errors.As(err, &netErr):
		return Connectivity
	}

	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(msg, n) {
				return r.cat
			}
		}
	}
	return Generic
}

// Message returns the localized text for cat. isImage selects the photo
// tips variant of the generic message.
func Message(ctx context.Context, cat Category, isImage bool) string {
	switch cat {
	case BadCredential:
		return i18n.T(ctx, "error.bad_credential")
	case QuotaExceeded:
		return i18n.T(ctx, "error.quota")
	case Connectivity:
		return i18n.T(ctx, "error.connectivity")
	case SafetyBlocked:
		return i18n.T(ctx, "error.safety")
	}
	if isImage {
		return i18n.T(ctx, "error.photo")
	}
	return i18n.T(ctx, "error.generic")
}

// Friendly classifies err and returns its message in one step.
func Friendly(ctx context.Context, err error, isImage bool) string {
	return Message(ctx, Classify(err), isImage)
}
