// file: model/request.go

package model

// AccountForm is the operator input of the create and edit dialogs.
type AccountForm struct {
	AccountHolderName string  `json:"accountHolderName" validate:"required,max=120"`
	Balance           float64 `json:"balance" validate:"gte=0"`
}

// AmountForm carries the raw text typed into a deposit or withdraw dialog.
// It is parsed by the service so that non-numeric input is reported the same
// way as a non-positive amount.
type AmountForm struct {
	Amount string `json:"amount"`
}
