package models

import "time"

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleSales      Role = "sales"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"unique;not null"           json:"email"`
	Phone        string    `gorm:"not null"                  json:"phone"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         Role      `gorm:"not null;default:customer" json:"role"`
	Active       bool      `gorm:"not null;default:true"     json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
	Slug string `gorm:"unique;not null"          json:"slug"`
}

const (
	CategorySeedlingBags = "seedling_bags"
	CategoryElectronics  = "electronics"
	CategoryServices     = "services"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Description string    `json:"description"`
	Category    string    `gorm:"index;not null"            json:"category"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Stock       uint      `gorm:"not null;default:0"        json:"stock"`
	Images      []string  `gorm:"serializer:json"           json:"images"`
	Active      bool      `gorm:"not null;default:true"     json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FlashSale struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	SalePrice float64   `gorm:"not null"                 json:"sale_price"`
	StartsAt  time.Time `gorm:"not null"                 json:"starts_at"`
	EndsAt    time.Time `gorm:"not null"                 json:"ends_at"`
	Active    bool      `gorm:"not null;default:false"   json:"active"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"
)

type Order struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Number         string        `gorm:"unique;not null"          json:"number"`
	UserID         uint          `gorm:"index;not null"           json:"user_id"`
	Status         OrderStatus   `gorm:"not null"                 json:"status"`
	PaymentStatus  PaymentStatus `gorm:"not null"                 json:"payment_status"`
	SubtotalAmount float64       `gorm:"not null"                 json:"subtotal_amount"`
	ShippingAmount float64       `gorm:"not null"                 json:"shipping_amount"`
	DiscountAmount float64       `gorm:"not null"                 json:"discount_amount"`
	TotalAmount    float64       `gorm:"not null"                 json:"total_amount"`
	DeliveryType   string        `gorm:"not null"                 json:"delivery_type"`
	DeliveryCounty string        `json:"delivery_county"`
	DeliveryTown   string        `json:"delivery_town"`
	DeliveryStreet string        `json:"delivery_street"`
	DeliveryNotes  string        `json:"delivery_notes"`
	IdempotencyKey *string       `gorm:"uniqueIndex"              json:"-"`
	Items          []OrderItem   `json:"items"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// OrderItem captures the unit price at order time. Live product price
// changes never touch existing orders.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint    `gorm:"index;not null"           json:"order_id"`
	ProductID   uint    `gorm:"not null"                 json:"product_id"`
	ProductName string  `gorm:"not null"                 json:"product_name"`
	Quantity    uint    `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   float64 `gorm:"not null"                 json:"unit_price"`
	LineTotal   float64 `gorm:"not null"                 json:"line_total"`
}

type Payment struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         uint          `gorm:"index;not null"           json:"order_id"`
	Amount          float64       `gorm:"not null"                 json:"amount"`
	PhoneNumber     string        `gorm:"not null"                 json:"phone_number"`
	MpesaCode       string        `gorm:"not null"                 json:"mpesa_code"`
	Status          PaymentStatus `gorm:"not null"                 json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Setting is a singleton row, always id = 1.
type Setting struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	ShippingFee           float64 `gorm:"not null"   json:"shipping_fee"`
	FreeDeliveryThreshold float64 `gorm:"not null"   json:"free_delivery_threshold"`
	CompanyName           string  `json:"company_name"`
	CompanyPhone          string  `json:"company_phone"`
	SupportEmail          string  `json:"support_email"`
	Currency              string  `json:"currency"`
}

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusDead    OutboxStatus = "dead"
)

const (
	OutboxKindEvent = "event"
	OutboxKindEmail = "email"
)

type OutboxMessage struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind          string       `gorm:"not null"                 json:"kind"`
	Topic         string       `gorm:"not null"                 json:"topic"`
	Key           string       `json:"key"`
	Payload       []byte       `gorm:"not null"                 json:"payload"`
	Status        OutboxStatus `gorm:"index;not null"           json:"status"`
	Attempts      uint         `gorm:"not null;default:0"       json:"attempts"`
	NextAttemptAt time.Time    `gorm:"index"                    json:"next_attempt_at"`
	LastError     string       `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
