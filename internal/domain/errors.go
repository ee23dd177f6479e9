package domain

import (
	"errors"
	"fmt"
)

type NotAuthenticatedError struct{}

func (e NotAuthenticatedError) Error() string {
	return "no authenticated session"
}

func IsNotAuthenticatedError(err error) bool {
	var target NotAuthenticatedError
	return errors.As(err, &target)
}

type ConversationNotFoundError struct {
	ID string
}

func (e ConversationNotFoundError) Error() string {
	return fmt.Sprintf("conversation %s not found", e.ID)
}

func IsConversationNotFoundError(err error) bool {
	var target ConversationNotFoundError
	return errors.As(err, &target)
}
