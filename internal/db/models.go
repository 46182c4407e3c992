package db

import "time"

/* ---------- order statuses ---------- */

const (
	OrderStatusPaid           = "PAID"
	OrderStatusProcessing     = "PROCESSING"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusResolved   = "RESOLVED"
	TicketStatusClosed     = "CLOSED"
)

type User struct {
	ID          int64     `json:"id"`
	IdentityID  string    `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Ingredients string    `json:"ingredients"`
	UnitSize    string    `json:"unit_size"`
	ABVPercent  *float64  `json:"abv_percent,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	ImagePath   string    `json:"image_path"`
	InStock     bool      `json:"in_stock"`
	IsLive      bool      `json:"is_live"`
	AssignAll   bool      `json:"assign_all"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Order struct {
	ID            int64     `json:"id"`
	OrderRef      string    `json:"order_ref"`
	UserID        int64     `json:"user_id"`
	TotalCents    int64     `json:"total_cents"`
	DeliveryDate  string    `json:"delivery_date"`
	DeliveryTime  string    `json:"delivery_time"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentTxnID  string    `json:"payment_txn_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	UserDisplayName string      `json:"user_display_name,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"order_id"`
	MenuItemID     *int64 `json:"menu_item_id,omitempty"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
}

type OrderEvent struct {
	ID              int64     `json:"id"`
	OrderID         int64     `json:"order_id"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	ChangedByUserID *int64    `json:"changed_by_user_id,omitempty"`
	ChangedByName   string    `json:"changed_by_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type SupportTicket struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Subject       string    `json:"subject"`
	Category      string    `json:"category"`
	Priority      string    `json:"priority"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	AdminResponse string    `json:"admin_response"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	UserDisplayName string `json:"user_display_name,omitempty"`
}

/* ---------- parameter structs ---------- */

type CreateUserParams struct {
	IdentityID  string
	Email       string
	DisplayName string
	Phone       string
	Address     string
	Role        string
	IsActive    bool
}

type UpdateUserParams struct {
	ID          int64
	DisplayName string
	Phone       string
	Address     string
}

type CreateMenuItemParams struct {
	Name        string
	Ingredients string
	UnitSize    string
	ABVPercent  *float64
	PriceCents  int64
	Category    string
	InStock     bool
	IsLive      bool
	AssignAll   bool
}

type UpdateMenuItemParams struct {
	ID          int64
	Name        string
	Ingredients string
	UnitSize    string
	ABVPercent  *float64
	PriceCents  int64
	Category    string
	InStock     bool
	IsLive      bool
	AssignAll   bool
}

type OrderItemParams struct {
	MenuItemID     int64
	Name           string
	UnitPriceCents int64
	Quantity       int64
}

type CreateOrderParams struct {
	OrderRef      string
	UserID        int64
	TotalCents    int64
	DeliveryDate  string
	DeliveryTime  string
	PaymentMethod string
	PaymentTxnID  string
	Items         []OrderItemParams
}

type CreateTicketParams struct {
	UserID      int64
	Subject     string
	Category    string
	Priority    string
	Description string
}
