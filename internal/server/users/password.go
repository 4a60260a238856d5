package users

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/mycloud/internal/common"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 6

var (
	hasUppercase = regexp.MustCompile(`[A-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
	hasSpecial   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// ValidatePassword enforces the account password policy: at least six
// characters with an uppercase letter, a digit and a special character.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	if !hasUppercase.MatchString(password) {
		return fmt.Errorf("%w: password must contain an uppercase letter", common.ErrorValidation)
	}
	if !hasDigit.MatchString(password) {
		return fmt.Errorf("%w: password must contain a digit", common.ErrorValidation)
	}
	if !hasSpecial.MatchString(password) {
		return fmt.Errorf("%w: password must contain a special character", common.ErrorValidation)
	}
	return nil
}
