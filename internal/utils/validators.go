package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)
)

// IsValidEmail checks the address with the validator "email" rule.
func IsValidEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}

// IsValidUsername allows 3 to 64 letters, digits, '_', '.' and '-'.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// PasswordProblems lists the complexity requirements the password misses.
// An empty result means the password is acceptable.
func PasswordProblems(password string) []string {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var problems []string
	if len([]rune(password)) < 8 {
		problems = append(problems, "at least 8 characters")
	}
	if !hasUpper {
		problems = append(problems, "an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "a lowercase letter")
	}
	if !hasNumber {
		problems = append(problems, "a digit")
	}
	if !hasSpecial {
		problems = append(problems, "a punctuation or symbol character")
	}
	return problems
}

// IsComplexPassword checks if the password meets the complexity requirements.
func IsComplexPassword(password string) bool {
	return len(PasswordProblems(password)) == 0
}
