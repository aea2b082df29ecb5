package form

import (
	"strings"
	"unicode/utf8"

	"authform/internal/domain"
)

const minPasswordLength = 6

func ValidateEmail(email string) domain.Validity {
	return domain.ValidityOf(strings.Contains(email, "@"))
}

// ValidatePassword counts characters of the trimmed value; the value itself is
// kept as typed.
func ValidatePassword(password string) domain.Validity {
	return domain.ValidityOf(utf8.RuneCountInString(strings.TrimSpace(password)) > minPasswordLength)
}

func validatorFor(name domain.FieldName) func(string) domain.Validity {
	switch name {
	case domain.FieldEmail:
		return ValidateEmail
	case domain.FieldPassword:
		return ValidatePassword
	default:
		return nil
	}
}
