package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

// Order is an immutable record of a placed purchase. Amounts are KRW.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:orders_user_created_idx,priority:1"`
	UserName        string              `gorm:"column:user_name;not null"`
	TotalPrice      int64               `gorm:"column:total_price;not null"`
	ShippingFee     int64               `gorm:"column:shipping_fee;not null"`
	Discount        int64               `gorm:"column:discount;not null;default:0"`
	FinalPrice      int64               `gorm:"column:final_price;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	ShippingName    string              `gorm:"column:shipping_name;not null"`
	ShippingPhone   string              `gorm:"column:shipping_phone;not null"`
	ShippingAddress string              `gorm:"column:shipping_address;not null"`
	ShippingMemo    *string             `gorm:"column:shipping_memo"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:pending"`
	DirectPurchase  bool                `gorm:"column:direct_purchase;not null;default:false"`
	CreatedAt       time.Time           `gorm:"column:created_at;index:orders_user_created_idx,priority:2"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// OrderItem snapshots a product line at purchase time.
type OrderItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	Position    int       `gorm:"column:position;not null"`
	ProductID   string    `gorm:"column:product_id;not null"`
	ProductName string    `gorm:"column:product_name;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Price       int64     `gorm:"column:price;not null"`
	Emoji       *string   `gorm:"column:emoji"`
}
