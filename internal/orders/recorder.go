package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/payloads"
	"github.com/dreamcandylab/candylab-backend/pkg/pagination"
)

const orderNumberPrefix = "DCL-"

// LineInput is one priced line handed over by checkout.
type LineInput struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       int64
	Emoji       string
}

// ShippingInfo is the delivery destination. Memo is optional.
type ShippingInfo struct {
	Name    string
	Phone   string
	Address string
	Memo    string
}

// CreateOrderInput carries an already priced order.
type CreateOrderInput struct {
	UserID         uuid.UUID
	UserName       string
	Items          []LineInput
	Subtotal       int64
	ShippingFee    int64
	Discount       int64
	FinalTotal     int64
	PaymentMethod  enums.PaymentMethod
	Shipping       ShippingInfo
	DirectPurchase bool
}

// Recorder persists orders and serves order history.
type Recorder interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error)
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

// RecorderParams groups dependencies for the recorder.
type RecorderParams struct {
	Repo   Repository
	Tx     txRunner
	Outbox outboxPublisher
	Logger *logger.Logger
	Clock  func() time.Time
}

type recorder struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

func NewRecorder(params RecorderParams) (Recorder, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &recorder{
		repo:   params.Repo,
		tx:     params.Tx,
		outbox: params.Outbox,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// OrderNumber renders the display number for t: the prefix plus the last
// eight digits of the epoch millisecond timestamp. Not unique.
func OrderNumber(t time.Time) string {
	return fmt.Sprintf("%s%08d", orderNumberPrefix, t.UnixMilli()%100_000_000)
}

func (r *recorder) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	now := r.now().UTC()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     OrderNumber(now),
		UserID:          input.UserID,
		UserName:        input.UserName,
		TotalPrice:      input.Subtotal,
		ShippingFee:     input.ShippingFee,
		Discount:        input.Discount,
		FinalPrice:      input.FinalTotal,
		PaymentMethod:   input.PaymentMethod,
		ShippingName:    input.Shipping.Name,
		ShippingPhone:   input.Shipping.Phone,
		ShippingAddress: input.Shipping.Address,
		ShippingMemo:    optionalString(input.Shipping.Memo),
		Status:          enums.OrderStatusPending,
		DirectPurchase:  input.DirectPurchase,
		CreatedAt:       now,
		Items:           make([]models.OrderItem, 0, len(input.Items)),
	}
	itemCount := 0
	for _, line := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Emoji:       optionalString(line.Emoji),
		})
		itemCount += line.Quantity
	}

	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:   enums.EventOrderCreated,
			AggregateID: order.ID,
			Actor:       &outbox.ActorRef{UserID: input.UserID},
			Data: payloads.OrderCreatedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				UserID:         order.UserID,
				ItemCount:      itemCount,
				FinalPrice:     order.FinalPrice,
				PaymentMethod:  order.PaymentMethod,
				DirectPurchase: order.DirectPurchase,
			},
			OccurredAt: now,
		}
		return r.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record order")
	}

	if r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"final_price":  order.FinalPrice,
		})
		r.logg.Info(logCtx, "order recorded")
	}
	return order, nil
}

func (r *recorder) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	rows, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	if rows == nil {
		rows = []models.Order{}
	}
	return rows, nil
}

func (r *recorder) ListAllOrders(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := r.repo.ListAll(ctx, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return page, nil
}

func (r *recorder) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	order, err := r.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
