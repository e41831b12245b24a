package validation

import "unicode"

// Password policy rules, checked in fixed order. The first failing rule is
// reported; later rules are not evaluated.
var passwordRules = []struct {
	check   func(string) bool
	message string
}{
	{minLength(9), "Password must be at least 9 characters long."},
	{containsClass(unicode.IsUpper), "Password must contain at least one uppercase letter."},
	{containsClass(unicode.IsDigit), "Password must contain at least one digit."},
}

// Password validates a candidate password against the account password policy.
// It returns nil when every rule passes, or a *FieldError for the first
// violated rule. Pure function of the input.
func Password(pw string) error {
	for _, rule := range passwordRules {
		if !rule.check(pw) {
			return &FieldError{Field: "password", Message: rule.message}
		}
	}
	return nil
}

// Name validates an optional display-name field: empty is allowed, otherwise
// the value must be letters only.
func Name(field, value string) error {
	if value == "" {
		return nil
	}
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return &FieldError{Field: field, Message: "Must contain only letters."}
		}
	}
	return nil
}

func minLength(n int) func(string) bool {
	return func(s string) bool { return len([]rune(s)) >= n }
}

func containsClass(is func(rune) bool) func(string) bool {
	return func(s string) bool {
		for _, r := range s {
			if is(r) {
				return true
			}
		}
		return false
	}
}
