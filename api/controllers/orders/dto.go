package orders

import (
	"time"

	"github.com/google/uuid"

	internalorders "github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

type ItemDTO struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       int64   `json:"price"`
	Emoji       *string `json:"emoji,omitempty"`
}

type ShippingDTO struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Memo    *string `json:"memo,omitempty"`
}

// OrderDTO is the wire shape of a recorded order.
type OrderDTO struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	UserID         uuid.UUID           `json:"user_id"`
	UserName       string              `json:"user_name"`
	Items          []ItemDTO           `json:"items"`
	TotalPrice     int64               `json:"total_price"`
	ShippingFee    int64               `json:"shipping_fee"`
	Discount       int64               `json:"discount"`
	FinalPrice     int64               `json:"final_price"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Shipping       ShippingDTO         `json:"shipping"`
	Status         enums.OrderStatus   `json:"status"`
	StatusText     string              `json:"status_text"`
	StatusEmoji    string              `json:"status_emoji"`
	DirectPurchase bool                `json:"direct_purchase"`
	CreatedAt      time.Time           `json:"created_at"`
}

func NewOrderDTO(o models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Emoji:       it.Emoji,
		})
	}
	return OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		UserName:      o.UserName,
		Items:         items,
		TotalPrice:    o.TotalPrice,
		ShippingFee:   o.ShippingFee,
		Discount:      o.Discount,
		FinalPrice:    o.FinalPrice,
		PaymentMethod: o.PaymentMethod,
		Shipping: ShippingDTO{
			Name:    o.ShippingName,
			Phone:   o.ShippingPhone,
			Address: o.ShippingAddress,
			Memo:    o.ShippingMemo,
		},
		Status:         o.Status,
		StatusText:     internalorders.StatusText(o.Status),
		StatusEmoji:    internalorders.StatusEmoji(o.Status),
		DirectPurchase: o.DirectPurchase,
		CreatedAt:      o.CreatedAt,
	}
}

func newOrderDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, o := range rows {
		out = append(out, NewOrderDTO(o))
	}
	return out
}
