package dto

import "time"

type CreateDepositRequestDTO struct {
	Amount        int64  `json:"amount" validate:"required,gt=0" example:"50000"`
	PaymentMethod string `json:"payment_method" validate:"required" example:"BANK_TRANSFER"`
}

type SubmitProofRequestDTO struct {
	ProofURL string `json:"proof_url" validate:"required,url" example:"https://cdn.example.com/proof/123.png"`
}

type ResolveDepositRequestDTO struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED" example:"APPROVED"`
	Notes    string `json:"notes" example:"verified against bank statement"`
}

type DepositResponseDTO struct {
	ID            int        `json:"id" example:"7"`
	UserID        int        `json:"user_id" example:"1"`
	Amount        int64      `json:"amount" example:"50000"`
	PaymentMethod string     `json:"payment_method" example:"BANK_TRANSFER"`
	Status        string     `json:"status" example:"PENDING"`
	ProofURL      string     `json:"proof_url,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	ProcessedBy   *int       `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	TransactionID *int       `json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ResolveDepositResponseDTO struct {
	Deposit     DepositResponseDTO      `json:"deposit"`
	Transaction *TransactionResponseDTO `json:"transaction,omitempty"`
}
