package validate

import (
	"regexp"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"homestock/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reCode  = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)
)

// ID parses a positive numeric path or query id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Date parses an ISO calendar date (YYYY-MM-DD). Empty means no date.
func Date(s string) (*civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return nil, false
	}
	return &d, true
}

// Code validates an invite code.
func Code(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCode.MatchString(s)
}

func InviteType(s string) (domain.PermissionType, bool) {
	p := domain.PermissionType(strings.TrimSpace(s))
	return p, p == domain.PermRead || p == domain.PermReadWrite
}

// Password enforces a length window and character mix on new passwords.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
