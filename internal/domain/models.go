package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

type TransactionType string

const (
	// TopUpTransaction credits from an approved deposit or a manual set upward.
	TopUpTransaction TransactionType = "TOP_UP"
	// PaymentTransaction debits for a completed wallet order or a manual set downward.
	PaymentTransaction TransactionType = "PAYMENT"
	// RefundTransaction credits reversing an earlier payment.
	RefundTransaction TransactionType = "REFUND"
	// PenaltyTransaction debits applied manually by an admin.
	PenaltyTransaction TransactionType = "PENALTY"
	// BonusTransaction credits applied manually by an admin.
	BonusTransaction TransactionType = "BONUS"
)

const PaymentMethodWallet = "WALLET"

type Account struct {
	ID        int       `db:"id"`
	Role      Role      `db:"role"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
}

// Transaction rows are append-only: never updated, never deleted.
type Transaction struct {
	ID           int               `db:"id"`
	AccountID    int               `db:"account_id"`
	Type         TransactionType   `db:"type"`
	Amount       int64             `db:"amount"`
	BalanceAfter int64             `db:"balance_after"`
	Description  string            `db:"description"`
	Reference    string            `db:"reference"`
	Metadata     map[string]string `db:"metadata"`
	CreatedAt    time.Time         `db:"created_at"`
}

type DepositStatus string

const (
	DepositPending    DepositStatus = "PENDING"
	DepositValidating DepositStatus = "VALIDATING"
	DepositApproved   DepositStatus = "APPROVED"
	DepositRejected   DepositStatus = "REJECTED"
)

type DepositRequest struct {
	ID            int           `db:"id"`
	UserID        int           `db:"user_id"`
	Amount        int64         `db:"amount"`
	PaymentMethod string        `db:"payment_method"`
	Status        DepositStatus `db:"status"`
	ProofURL      string        `db:"proof_url"`
	AdminNotes    string        `db:"admin_notes"`
	ProcessedBy   *int          `db:"processed_by"`
	ProcessedAt   *time.Time    `db:"processed_at"`
	TransactionID *int          `db:"transaction_id"`
	CreatedAt     time.Time     `db:"created_at"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderValidating OrderStatus = "VALIDATING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

type Order struct {
	ID            int         `db:"id"`
	UserID        int         `db:"user_id"`
	ItemID        int         `db:"item_id"`
	Amount        int64       `db:"amount"`
	PaymentMethod string      `db:"payment_method"`
	Status        OrderStatus `db:"status"`
	PaymentProof  string      `db:"payment_proof"`
	AdminNotes    string      `db:"admin_notes"`
	ProcessedBy   *int        `db:"processed_by"`
	ProcessedAt   *time.Time  `db:"processed_at"`
	TransactionID *int        `db:"transaction_id"`
	CreatedAt     time.Time   `db:"created_at"`
}

type ServiceStatus string

const (
	ServicePending   ServiceStatus = "PENDING"
	ServiceActive    ServiceStatus = "ACTIVE"
	ServiceCancelled ServiceStatus = "CANCELLED"
)

// ServiceRecord is the provisioning stub linked to an order. Actual provisioning
// happens outside this module.
type ServiceRecord struct {
	ID        int           `db:"id"`
	OrderID   int           `db:"order_id"`
	UserID    int           `db:"user_id"`
	Name      string        `db:"name"`
	Status    ServiceStatus `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
}

// CatalogItem is the read-only view of the external catalog consulted at order
// creation.
type CatalogItem struct {
	ID       int    `db:"id"`
	Name     string `db:"name"`
	Price    int64  `db:"price"`
	Category string `db:"category"`
	IsActive bool   `db:"is_active"`
}

// IsTerminal reports whether a deposit can no longer change status.
func (s DepositStatus) IsTerminal() bool {
	return s == DepositApproved || s == DepositRejected
}

// IsTerminal reports whether an order can no longer change status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderRefunded
}
