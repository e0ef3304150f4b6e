package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Required fails for empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLen limits the number of characters (runes) in value.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ByteLenBetween bounds the byte length of value, inclusive.
func ByteLenBetween(field, value string, min, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min && len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d characters long", min, max)},
	}
}

// Email accepts a bare address with a dotted domain, e.g. user@example.com.
func Email(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			if !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// URL requires an absolute URL whose scheme is one of schemes.
func URL(field, value string, schemes ...string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.ParseRequestURI(value)
			if err != nil || u.Host == "" {
				return false
			}
			return len(schemes) == 0 || slices.Contains(schemes, u.Scheme)
		},
		Error: ValidationError{Field: field, Message: "must be a valid URL"},
	}
}

// RFC3339 requires a timestamp such as 2025-01-02T15:04:05Z.
func RFC3339(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, err := time.Parse(time.RFC3339, value)
			return err == nil
		},
		Error: ValidationError{Field: field, Message: "must be an RFC 3339 timestamp"},
	}
}

// Custom wraps an arbitrary predicate.
func Custom(field, message string, check func() bool) Rule {
	return Rule{Check: check, Error: ValidationError{Field: field, Message: message}}
}
