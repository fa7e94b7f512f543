package service

import (
	"errors"
	"go-bank-console/common"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAccount    = errors.New("invalid account data")
	ErrInvalidAmount     = errors.New("amount must be a number greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotConfirmed      = errors.New("deletion was not confirmed")
)

// FailureMessage is the operator-facing text for a failed action, e.g.
// FailureMessage("deposit", err). Remote failures get a generic retry hint.
func FailureMessage(action string, err error) string {
	var validationErr *common.ValidationError
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "Enter a valid amount to " + action + "."
	case errors.Is(err, ErrInsufficientFunds):
		return "Insufficient balance for this withdrawal."
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, ErrAccountNotFound):
		return "The account no longer exists."
	default:
		return "Could not " + action + ". Please try again."
	}
}
