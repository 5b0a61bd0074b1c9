package payloads

import (
	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once per recorded order.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	UserID         uuid.UUID           `json:"user_id"`
	ItemCount      int                 `json:"item_count"`
	FinalPrice     int64               `json:"final_price"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	DirectPurchase bool                `json:"direct_purchase"`
}

// JellyCreatedEvent announces a new contest entry.
type JellyCreatedEvent struct {
	JellyID   uuid.UUID         `json:"jelly_id"`
	Name      string            `json:"name"`
	Flavor    enums.JellyFlavor `json:"flavor"`
	CreatorID uuid.UUID         `json:"creator_id"`
}

// JellyVotedEvent carries the vote total right after the vote committed.
type JellyVotedEvent struct {
	JellyID uuid.UUID `json:"jelly_id"`
	UserID  uuid.UUID `json:"user_id"`
	Votes   int       `json:"votes"`
}

// JellyDeletedEvent records a deletion and how many votes went with it.
type JellyDeletedEvent struct {
	JellyID      uuid.UUID `json:"jelly_id"`
	DeletedBy    uuid.UUID `json:"deleted_by"`
	RemovedVotes int64     `json:"removed_votes"`
}
