package chatstore

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type sendArgs struct {
	ChatID   string `validate:"required,max=128"`
	SenderID string `validate:"required,max=128"`
}

type readArgs struct {
	MessageID string `validate:"required,max=128"`
	UserID    string `validate:"required,max=128"`
}

func validateArgs(args any) error {
	if err := validate.Struct(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}
