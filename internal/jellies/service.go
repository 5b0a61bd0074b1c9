package jellies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/votes"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/payloads"
)

var errJellyGone = errors.New("jelly already deleted")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type voteCascade interface {
	DeleteForJellyTx(tx *gorm.DB, jellyID uuid.UUID) (votes.CascadeResult, error)
	ReleaseLock(ctx context.Context, userID, jellyID uuid.UUID) error
}

// Service exposes the jelly lab and contest.
type Service interface {
	Create(ctx context.Context, input CreateJellyInput, creatorID uuid.UUID, creatorName string) (*models.Jelly, error)
	ListLatest(ctx context.Context) ([]models.Jelly, error)
	ListRanking(ctx context.Context) ([]models.Jelly, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Jelly, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Jelly, error)
	Delete(ctx context.Context, jellyID, actorID uuid.UUID, actorRole enums.UserRole) error
	Winner(ctx context.Context) (*models.Jelly, error)
	CustomProduct(ctx context.Context, productID string) (catalog.Product, error)
}

// ServiceParams groups dependencies for the jelly service.
type ServiceParams struct {
	Repo             *Repository
	Tx               txRunner
	Outbox           outboxPublisher
	Votes            voteCascade
	Metrics          *metrics.Storefront
	Logger           *logger.Logger
	CustomJellyPrice int64
	WinnerJellyPrice int64
}

type service struct {
	repo        *Repository
	tx          txRunner
	outbox      outboxPublisher
	votes       voteCascade
	metrics     *metrics.Storefront
	logg        *logger.Logger
	customPrice int64
	winnerPrice int64
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("jelly repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Votes == nil {
		return nil, fmt.Errorf("vote cascade required")
	}
	if params.CustomJellyPrice <= 0 || params.WinnerJellyPrice <= 0 {
		return nil, fmt.Errorf("jelly prices must be positive")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		outbox:      params.Outbox,
		votes:       params.Votes,
		metrics:     params.Metrics,
		logg:        params.Logger,
		customPrice: params.CustomJellyPrice,
		winnerPrice: params.WinnerJellyPrice,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateJellyInput, creatorID uuid.UUID, creatorName string) (*models.Jelly, error) {
	if creatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if err := ValidateJelly(input); err != nil {
		return nil, err
	}
	jelly := &models.Jelly{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Flavor:      input.Flavor,
		Sweetness:   input.Sweetness,
		Sourness:    input.Sourness,
		Texture:     input.Texture,
		Color:       strings.ToUpper(input.Color),
		CreatorID:   creatorID,
		CreatorName: strings.TrimSpace(creatorName),
		Votes:       0,
		CreatedAt:   s.now().UTC(),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, jelly); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventJellyCreated,
			AggregateID: jelly.ID,
			Actor:       &outbox.ActorRef{UserID: creatorID},
			Data: payloads.JellyCreatedEvent{
				JellyID:   jelly.ID,
				Name:      jelly.Name,
				Flavor:    jelly.Flavor,
				CreatorID: creatorID,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create jelly")
	}
	return jelly, nil
}

func (s *service) ListLatest(ctx context.Context) ([]models.Jelly, error) {
	return s.list(s.repo.ListLatest(ctx))
}

func (s *service) ListRanking(ctx context.Context) ([]models.Jelly, error) {
	return s.list(s.repo.ListRanking(ctx))
}

func (s *service) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Jelly, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	return s.list(s.repo.ListByCreator(ctx, userID))
}

func (s *service) list(rows []models.Jelly, err error) ([]models.Jelly, error) {
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list jellies")
	}
	if rows == nil {
		rows = []models.Jelly{}
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Jelly, error) {
	jelly, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "jelly not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load jelly")
	}
	return jelly, nil
}

// Delete removes the jelly and all of its votes in one transaction. Only
// the author or an admin may delete.
func (s *service) Delete(ctx context.Context, jellyID, actorID uuid.UUID, actorRole enums.UserRole) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	jelly, err := s.Get(ctx, jellyID)
	if err != nil {
		return err
	}
	if jelly.CreatorID != actorID && actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can delete this jelly")
	}

	var cascade votes.CascadeResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if cascade, err = s.votes.DeleteForJellyTx(tx, jellyID); err != nil {
			return err
		}
		deleted, err := s.repo.DeleteTx(tx, jellyID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return errJellyGone
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventJellyDeleted,
			AggregateID: jellyID,
			Actor:       &outbox.ActorRef{UserID: actorID, Role: actorRole.String()},
			Data: payloads.JellyDeletedEvent{
				JellyID:      jellyID,
				DeletedBy:    actorID,
				RemovedVotes: cascade.Removed,
			},
		})
	})
	if err != nil {
		if errors.Is(err, errJellyGone) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "jelly not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete jelly")
	}
	s.metrics.IncJellyDeleted()

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithFields(ctx, map[string]any{
			"jelly_id":      jellyID.String(),
			"removed_votes": cascade.Removed,
		})
		s.logg.Info(logCtx, "jelly deleted")
	}
	s.releaseLocks(logCtx, jellyID, cascade.VoterIDs)
	return nil
}

func (s *service) releaseLocks(ctx context.Context, jellyID uuid.UUID, voters []uuid.UUID) {
	var errs error
	for _, userID := range voters {
		errs = multierr.Append(errs, s.votes.ReleaseLock(ctx, userID, jellyID))
	}
	if errs != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"error":    errs.Error(),
			"failures": len(multierr.Errors(errs)),
		}), "vote lock cleanup incomplete")
	}
}

func (s *service) Winner(ctx context.Context) (*models.Jelly, error) {
	jelly, err := s.repo.Top(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no winner yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load winner")
	}
	return jelly, nil
}

// CustomProduct resolves custom_<id> and winner_<id> product ids. A winner
// id resolves only while that jelly leads the ranking.
func (s *service) CustomProduct(ctx context.Context, productID string) (catalog.Product, error) {
	notFound := pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	switch {
	case strings.HasPrefix(productID, catalog.CustomPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(productID, catalog.CustomPrefix))
		if err != nil {
			return catalog.Product{}, notFound
		}
		jelly, err := s.Get(ctx, id)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				return catalog.Product{}, notFound
			}
			return catalog.Product{}, err
		}
		return ConvertToProduct(*jelly, jelly.CreatorName, s.customPrice), nil
	case strings.HasPrefix(productID, catalog.WinnerPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(productID, catalog.WinnerPrefix))
		if err != nil {
			return catalog.Product{}, notFound
		}
		winner, err := s.Winner(ctx)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				return catalog.Product{}, notFound
			}
			return catalog.Product{}, err
		}
		if winner.ID != id {
			return catalog.Product{}, notFound
		}
		return WinnerProduct(*winner, s.winnerPrice), nil
	default:
		return catalog.Product{}, notFound
	}
}
