package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Email        string    `gorm:"unique;not null"                              json:"email"`
	PasswordHash string    `gorm:"not null"                                     json:"-"`
	Role         UserRole  `gorm:"type:varchar(16);not null;default:'student'"  json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Event struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `gorm:"not null;index"           json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity"`
	CreatedBy   *uint      `gorm:"index"                    json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Creator *User `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationAttended   RegistrationStatus = "attended"
	RegistrationNoShow     RegistrationStatus = "no_show"
)

// Registration links a user to an event, at most one row per (user, event)
// pair. Re-registering after a cancel updates the existing row's status
// instead of inserting a second one.
type Registration struct {
	ID        uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint               `gorm:"not null;uniqueIndex:idx_registrations_user_event" json:"user_id"`
	EventID   uint               `gorm:"not null;uniqueIndex:idx_registrations_user_event" json:"event_id"`
	Status    RegistrationStatus `gorm:"type:varchar(16);not null;default:'registered'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Merch prices are integer minor units (cents) so line totals sum exactly,
// never floats.
type Merch struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string    `gorm:"not null"                        json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `gorm:"not null;check:price_cents >= 0" json:"price_cents"`
	StockQty    int       `gorm:"not null;default:0"              json:"stock_qty"`
	IsActive    bool      `gorm:"not null;default:true"           json:"is_active"`
	EventID     *uint     `gorm:"index"                           json:"event_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// Order.TotalCents caches the sum of its line items; every line-item
// mutation recomputes it inside the same transaction.
type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint        `gorm:"index;not null"           json:"user_id"`
	Status     OrderStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	TotalCents int64       `gorm:"not null;default:0;check:total_cents >= 0"   json:"total_cents"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	User  *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem holds a unit-price snapshot taken at purchase time; later merch
// price changes must not rewrite order history. Merch referenced here cannot
// be deleted (RESTRICT), soft-disable it via Merch.IsActive instead.
type OrderItem struct {
	ID             uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        uint  `gorm:"not null;uniqueIndex:idx_order_items_order_merch" json:"order_id"`
	MerchID        uint  `gorm:"not null;uniqueIndex:idx_order_items_order_merch" json:"merch_id"`
	Quantity       int   `gorm:"not null;check:quantity > 0"          json:"quantity"`
	UnitPriceCents int64 `gorm:"not null;check:unit_price_cents >= 0" json:"unit_price_cents"`

	Order *Order `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
	Merch *Merch `gorm:"foreignKey:MerchID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// Review targets an event, a merch item, or both. The nullable FK pair plus
// the chk_reviews_target table check keep the storage layout of the original
// schema; ReviewTarget validates the pair before it reaches the database.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	EventID   *uint     `gorm:"index;check:chk_reviews_target,event_id IS NOT NULL OR merch_id IS NOT NULL" json:"event_id"`
	MerchID   *uint     `gorm:"index"                    json:"merch_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Merch *Merch `gorm:"foreignKey:MerchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_event" json:"user_id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_favorites_user_event" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// All lists every model in FK order, parents before children, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Event{},
		&Registration{},
		&Merch{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Favorite{},
	}
}
