package jellies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/votes"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/db/dbtest"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
)

// countingCascade wraps the real ledger and fails lock releases on demand.
type countingCascade struct {
	*votes.Ledger
	releaseErr error
	released   []uuid.UUID
}

func (c *countingCascade) ReleaseLock(ctx context.Context, userID, jellyID uuid.UUID) error {
	c.released = append(c.released, userID)
	if c.releaseErr != nil {
		return c.releaseErr
	}
	return c.Ledger.ReleaseLock(ctx, userID, jellyID)
}

type labFixture struct {
	client  *db.Client
	svc     Service
	ledger  *votes.Ledger
	cascade *countingCascade
}

func newLabFixture(t *testing.T) labFixture {
	t.Helper()
	client := dbtest.Open(t)
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop())
	ledger, err := votes.NewLedger(votes.LedgerParams{
		Repo:   votes.NewRepository(client.DB()),
		Tx:     client,
		Outbox: emitter,
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	cascade := &countingCascade{Ledger: ledger}
	svc, err := NewService(ServiceParams{
		Repo:             NewRepository(client.DB()),
		Tx:               client,
		Outbox:           emitter,
		Votes:            cascade,
		Metrics:          metrics.NewStorefront(prometheus.NewRegistry()),
		Logger:           logger.Nop(),
		CustomJellyPrice: 9900,
		WinnerJellyPrice: 15900,
	})
	require.NoError(t, err)

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return labFixture{client: client, svc: svc, ledger: ledger, cascade: cascade}
}

func validInput(name string) CreateJellyInput {
	return CreateJellyInput{
		Name:      name,
		Flavor:    enums.FlavorStrawberry,
		Sweetness: 60,
		Sourness:  20,
		Texture:   enums.TextureSoft,
		Color:     "#ffb6c1",
	}
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()
	author := uuid.New()

	first, err := f.svc.Create(ctx, validInput(" 첫번째 "), author, "메이커")
	require.NoError(t, err)
	assert.Equal(t, "첫번째", first.Name)
	assert.Equal(t, "#FFB6C1", first.Color)
	assert.Zero(t, first.Votes)

	second, err := f.svc.Create(ctx, validInput("두번째"), uuid.New(), "다른이")
	require.NoError(t, err)

	latest, err := f.svc.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, second.ID, latest[0].ID)

	_, err = f.ledger.Vote(ctx, first.ID, uuid.New())
	require.NoError(t, err)
	ranking, err := f.svc.ListRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ranking[0].ID)
	assert.Equal(t, 1, ranking[0].Votes)

	mine, err := f.svc.ListByCreator(ctx, author)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	var events int64
	require.NoError(t, f.client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventJellyCreated).Count(&events).Error)
	assert.Equal(t, int64(2), events)
}

func TestCreateRejectsMalformed(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	input := validInput("x")
	input.Sweetness = 150
	_, err := f.svc.Create(context.Background(), input, uuid.New(), "메이커")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	latest, err := f.svc.ListLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestDeleteCascadesVotes(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()
	author := uuid.New()
	jelly, err := f.svc.Create(ctx, validInput("삭제될 젤리"), author, "메이커")
	require.NoError(t, err)
	keep, err := f.svc.Create(ctx, validInput("남을 젤리"), author, "메이커")
	require.NoError(t, err)

	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, v := range voters {
		_, err := f.ledger.Vote(ctx, jelly.ID, v)
		require.NoError(t, err)
	}
	_, err = f.ledger.Vote(ctx, keep.ID, voters[0])
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, jelly.ID, author, enums.UserRoleUser))

	_, err = f.svc.Get(ctx, jelly.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	var remaining int64
	require.NoError(t, f.client.DB().Model(&models.Vote{}).Where("jelly_id = ?", jelly.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
	for _, v := range voters {
		voted, err := f.ledger.HasVoted(ctx, v, jelly.ID)
		require.NoError(t, err)
		assert.False(t, voted)
	}
	voted, err := f.ledger.HasVoted(ctx, voters[0], keep.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	assert.ElementsMatch(t, voters, f.cascade.released)

	var deleted models.OutboxEvent
	require.NoError(t, f.client.DB().Where("event_type = ?", enums.EventJellyDeleted).First(&deleted).Error)
	assert.Equal(t, jelly.ID, deleted.AggregateID)
}

func TestDeletePermissions(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()
	author := uuid.New()
	jelly, err := f.svc.Create(ctx, validInput("보호된 젤리"), author, "메이커")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, jelly.ID, uuid.New(), enums.UserRoleUser)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, f.svc.Delete(ctx, jelly.ID, uuid.New(), enums.UserRoleAdmin))

	err = f.svc.Delete(ctx, jelly.ID, author, enums.UserRoleUser)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteLockCleanupFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()
	author := uuid.New()
	jelly, err := f.svc.Create(ctx, validInput("젤리"), author, "메이커")
	require.NoError(t, err)
	_, err = f.ledger.Vote(ctx, jelly.ID, uuid.New())
	require.NoError(t, err)
	_, err = f.ledger.Vote(ctx, jelly.ID, uuid.New())
	require.NoError(t, err)

	f.cascade.releaseErr = errors.New("redis down")
	require.NoError(t, f.svc.Delete(ctx, jelly.ID, author, enums.UserRoleUser))
	assert.Len(t, f.cascade.released, 2)
}

type failingCascade struct {
	countingCascade
}

func (failingCascade) DeleteForJellyTx(*gorm.DB, uuid.UUID) (votes.CascadeResult, error) {
	return votes.CascadeResult{}, errors.New("disk full")
}

func TestDeleteRollsBackOnCascadeFailure(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()
	author := uuid.New()
	jelly, err := f.svc.Create(ctx, validInput("젤리"), author, "메이커")
	require.NoError(t, err)

	f.svc.(*service).votes = &failingCascade{countingCascade: countingCascade{Ledger: f.ledger}}
	err = f.svc.Delete(ctx, jelly.ID, author, enums.UserRoleUser)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))

	_, err = f.svc.Get(ctx, jelly.ID)
	require.NoError(t, err)
}

func TestWinnerAndCustomProduct(t *testing.T) {
	t.Parallel()

	f := newLabFixture(t)
	ctx := context.Background()

	_, err := f.svc.Winner(ctx)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	early, err := f.svc.Create(ctx, validInput("먼저"), uuid.New(), "메이커")
	require.NoError(t, err)
	late, err := f.svc.Create(ctx, validInput("나중"), uuid.New(), "")
	require.NoError(t, err)

	_, err = f.svc.Winner(ctx)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.ledger.Vote(ctx, late.ID, uuid.New())
	require.NoError(t, err)
	_, err = f.ledger.Vote(ctx, early.ID, uuid.New())
	require.NoError(t, err)

	winner, err := f.svc.Winner(ctx)
	require.NoError(t, err)
	assert.Equal(t, early.ID, winner.ID)

	p, err := f.svc.CustomProduct(ctx, catalog.WinnerPrefix+early.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(15900), p.Price)
	assert.Equal(t, "1표를 받아 우승한 Dream Candy Lab의 걸작", p.Description)

	_, err = f.svc.CustomProduct(ctx, catalog.WinnerPrefix+late.ID.String())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	p, err = f.svc.CustomProduct(ctx, catalog.CustomPrefix+late.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(9900), p.Price)
	assert.Equal(t, "나가 만든 커스텀 젤리입니다!", p.Description)

	for _, id := range []string{"custom_not-a-uuid", catalog.CustomPrefix + uuid.NewString(), "jelly-001"} {
		_, err = f.svc.CustomProduct(ctx, id)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), id)
	}

	resolver := catalog.NewResolver(f.svc)
	p, err = resolver.Resolve(ctx, catalog.CustomPrefix+early.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "먼저", p.Name)
}
