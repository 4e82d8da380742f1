package auth

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var userIDRegexp = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

type loginRequest struct {
	UserID string `validate:"required,max=64"`
}

// ValidateUserID checks that id is usable as a login name.
func ValidateUserID(id string) error {
	if err := validate.Struct(loginRequest{UserID: id}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUserID, err)
	}
	if !userIDRegexp.MatchString(id) {
		return fmt.Errorf("%w: %q may only contain letters, digits and _.@-", ErrInvalidUserID, id)
	}
	return nil
}
