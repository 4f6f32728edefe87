package utils

import (
	"errors"
	"strings"
	"unicode"
)

const maxIdentifierLength = 255

var (
	ErrIdentifierTooLong    = errors.New("identifier is too long")
	ErrIdentifierMalformed  = errors.New("identifier contains whitespace or control characters")
	ErrIdentifierLikeOption = errors.New("identifier must not start with '-'")
)

// CheckValidRev validates a revision identifier. The empty revision is valid
// and means the latest revision.
func CheckValidRev(rev string) error {
	if rev == "" {
		return nil
	}
	return checkIdentifier(rev)
}

// CheckValidApplicationName validates an application name, which is required.
func CheckValidApplicationName(name string) error {
	if name == "" {
		return errors.New("application name is required")
	}
	return checkIdentifier(name)
}

func checkIdentifier(id string) error {
	if len(id) > maxIdentifierLength {
		return ErrIdentifierTooLong
	}
	if strings.HasPrefix(id, "-") {
		return ErrIdentifierLikeOption
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrIdentifierMalformed
		}
	}
	return nil
}
