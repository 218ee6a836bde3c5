package dto

import "time"

type BalanceResponseDTO struct {
	AccountID int   `json:"account_id" example:"1"`
	Balance   int64 `json:"balance" example:"70000"`
}

type TransactionResponseDTO struct {
	ID           int               `json:"id" example:"42"`
	AccountID    int               `json:"account_id" example:"1"`
	Type         string            `json:"type" example:"TOP_UP"`
	Amount       int64             `json:"amount" example:"50000"`
	BalanceAfter int64             `json:"balance_after" example:"120000"`
	Description  string            `json:"description" example:"deposit approved"`
	Reference    string            `json:"reference" example:"6a1c1d2e-0a97-4a52-8f6e-2a3a1fbb9c10"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

type CreateAccountRequestDTO struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN OWNER" example:"USER"`
}

type AccountResponseDTO struct {
	ID        int       `json:"id" example:"1"`
	Role      string    `json:"role" example:"USER"`
	Balance   int64     `json:"balance" example:"0"`
	CreatedAt time.Time `json:"created_at"`
}

type AdjustBalanceRequestDTO struct {
	Action string `json:"action" validate:"required,oneof=add withdraw set refund" example:"add"`
	Amount int64  `json:"amount" validate:"gte=0" example:"10000"`
	Reason string `json:"reason" validate:"required" example:"loyalty bonus"`
}

type ConsistencyResponseDTO struct {
	AccountID  int  `json:"account_id" example:"1"`
	Consistent bool `json:"consistent" example:"true"`
}

type AdjustBalanceResponseDTO struct {
	Account     AccountResponseDTO     `json:"account"`
	Transaction TransactionResponseDTO `json:"transaction"`
}
