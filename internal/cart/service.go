package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type productResolver interface {
	Resolve(ctx context.Context, productID string) (catalog.Product, error)
}

// Service loads a user's cart, applies one operation and saves it back.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Store, error)
	AddItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Store, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Store, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*Store, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store    snapshotStore
	products productResolver
	ttl      time.Duration
	logg     *logger.Logger
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store    snapshotStore
	Products productResolver
	TTL      time.Duration
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, errors.New("cart snapshot store required")
	}
	if params.Products == nil {
		return nil, errors.New("product resolver required")
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		ttl:      params.TTL,
		logg:     params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Store, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	return s.load(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Store, error) {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock")
	}
	store.AddItem(product, quantity)
	if err := s.save(ctx, userID, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Store, error) {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	store.UpdateQuantity(strings.TrimSpace(productID), quantity)
	if err := s.save(ctx, userID, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*Store, error) {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	store.RemoveItem(strings.TrimSpace(productID))
	if err := s.save(ctx, userID, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*Store, error) {
	store := NewStore()
	raw, err := s.store.Get(ctx, s.store.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return store, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "user_id", userID.String()), "discarding unreadable cart snapshot")
		}
		return store, nil
	}
	store.Restore(snap)
	return store, nil
}

func (s *service) save(ctx context.Context, userID uuid.UUID, store *Store) error {
	key := s.store.CartKey(userID.String())
	if store.Len() == 0 {
		if err := s.store.Del(ctx, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	}
	payload, err := json.Marshal(store.Snapshot())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}
