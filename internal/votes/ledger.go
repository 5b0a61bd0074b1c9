package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/payloads"
)

var (
	errJellyNotFound = errors.New("jelly not found")
	errAlreadyVoted  = errors.New("already voted")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type voteLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	VoteLockKey(userID, jellyID string) string
}

// CascadeResult describes the votes removed alongside a jelly.
type CascadeResult struct {
	Removed  int64
	VoterIDs []uuid.UUID
}

// Ledger enforces one vote per (user, jelly).
type Ledger struct {
	repo    *Repository
	tx      txRunner
	outbox  outboxPublisher
	locks   voteLocker
	lockTTL time.Duration
	metrics *metrics.Storefront
	logg    *logger.Logger
	now     func() time.Time
}

// LedgerParams groups dependencies for the ledger. Locks is optional.
type LedgerParams struct {
	Repo    *Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Locks   voteLocker
	LockTTL time.Duration
	Metrics *metrics.Storefront
	Logger  *logger.Logger
}

func NewLedger(params LedgerParams) (*Ledger, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("votes repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	ttl := params.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Ledger{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		locks:   params.Locks,
		lockTTL: ttl,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

func (l *Ledger) HasVoted(ctx context.Context, userID, jellyID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || jellyID == uuid.Nil {
		return false, nil
	}
	ok, err := l.repo.Exists(ctx, userID, jellyID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check vote")
	}
	return ok, nil
}

// Vote records the user's vote and returns the jelly's new total. The
// storage uniqueness constraint decides duplicates; the lock only absorbs
// double submits.
func (l *Ledger) Vote(ctx context.Context, jellyID, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if jellyID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "jelly id is required")
	}
	logCtx := l.logCtx(ctx, userID, jellyID)

	release, err := l.acquire(logCtx, userID, jellyID)
	if err != nil {
		return 0, err
	}
	defer release()

	var votes int
	err = l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := l.repo.IncrementJellyVotes(tx, jellyID)
		if err != nil {
			return err
		}
		if !found {
			return errJellyNotFound
		}
		inserted, err := l.repo.InsertVote(tx, userID, jellyID, l.now().UTC())
		if err != nil {
			return err
		}
		if !inserted {
			return errAlreadyVoted
		}
		if votes, err = l.repo.JellyVotes(tx, jellyID); err != nil {
			return err
		}
		return l.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventJellyVoted,
			AggregateID: jellyID,
			Actor:       &outbox.ActorRef{UserID: userID},
			Data: payloads.JellyVotedEvent{
				JellyID: jellyID,
				UserID:  userID,
				Votes:   votes,
			},
		})
	})
	switch {
	case err == nil:
		l.metrics.IncVote(metrics.VoteAccepted)
		return votes, nil
	case errors.Is(err, errJellyNotFound):
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "jelly not found")
	case errors.Is(err, errAlreadyVoted):
		l.metrics.IncVote(metrics.VoteDuplicate)
		if l.logg != nil {
			l.logg.Info(logCtx, "duplicate vote rejected")
		}
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "already voted")
	default:
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record vote")
	}
}

func (l *Ledger) VotedJellyIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	ids, err := l.repo.JellyIDsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list voted jellies")
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// DeleteForJellyTx removes every vote for the jelly inside tx.
func (l *Ledger) DeleteForJellyTx(tx *gorm.DB, jellyID uuid.UUID) (CascadeResult, error) {
	voters, err := l.repo.VoterIDsTx(tx, jellyID)
	if err != nil {
		return CascadeResult{}, err
	}
	removed, err := l.repo.DeleteByJellyTx(tx, jellyID)
	if err != nil {
		return CascadeResult{}, err
	}
	return CascadeResult{Removed: removed, VoterIDs: voters}, nil
}

// ReleaseLock drops a pending vote lock. No-op without a lock store.
func (l *Ledger) ReleaseLock(ctx context.Context, userID, jellyID uuid.UUID) error {
	if l.locks == nil {
		return nil
	}
	return l.locks.Del(ctx, l.locks.VoteLockKey(userID.String(), jellyID.String()))
}

func (l *Ledger) acquire(ctx context.Context, userID, jellyID uuid.UUID) (func(), error) {
	noop := func() {}
	if l.locks == nil {
		return noop, nil
	}
	key := l.locks.VoteLockKey(userID.String(), jellyID.String())
	ok, err := l.locks.SetNX(ctx, key, "1", l.lockTTL)
	if err != nil {
		if l.logg != nil {
			l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "vote lock unavailable, continuing without it")
		}
		return noop, nil
	}
	if !ok {
		l.metrics.IncVote(metrics.VoteLocked)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vote already in progress")
	}
	return func() {
		if err := l.locks.Del(context.WithoutCancel(ctx), key); err != nil && l.logg != nil {
			l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "vote lock release failed")
		}
	}, nil
}

func (l *Ledger) logCtx(ctx context.Context, userID, jellyID uuid.UUID) context.Context {
	if l.logg == nil {
		return ctx
	}
	return l.logg.WithFields(ctx, map[string]any{
		"user_id":  userID.String(),
		"jelly_id": jellyID.String(),
	})
}
