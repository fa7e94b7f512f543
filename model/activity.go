package model

import "time"

type ActivityAction string

const (
	ActionCreate   ActivityAction = "create"
	ActionUpdate   ActivityAction = "update"
	ActionDelete   ActivityAction = "delete"
	ActionDeposit  ActivityAction = "deposit"
	ActionWithdraw ActivityAction = "withdraw"
)

// Activity is an audit record of one successful write made through the
// console.
type Activity struct {
	ID           int            `json:"id"`
	Action       ActivityAction `json:"action"`
	AccountID    int            `json:"account_id"`
	Amount       float64        `json:"amount"`
	BalanceAfter float64        `json:"balance_after"`
	CreatedAt    time.Time      `json:"created_at"`
}
