package votes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/db/dbtest"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
)

type stubLocks struct {
	held   map[string]bool
	setErr error
	dels   []string
}

func newStubLocks() *stubLocks {
	return &stubLocks{held: map[string]bool{}}
}

func (s *stubLocks) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if s.held[key] {
		return false, nil
	}
	s.held[key] = true
	return true, nil
}

func (s *stubLocks) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.held, k)
		s.dels = append(s.dels, k)
	}
	return nil
}

func (s *stubLocks) VoteLockKey(userID, jellyID string) string {
	return "cl:lock:vote:" + userID + ":" + jellyID
}

type fixture struct {
	client *db.Client
	ledger *Ledger
	locks  *stubLocks
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	locks := newStubLocks()
	reg := prometheus.NewRegistry()
	ledger, err := NewLedger(LedgerParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Outbox:  outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop()),
		Locks:   locks,
		Metrics: metrics.NewStorefront(reg),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return fixture{client: client, ledger: ledger, locks: locks, reg: reg}
}

func seedJelly(t *testing.T, client *db.Client) uuid.UUID {
	t.Helper()
	jelly := models.Jelly{
		ID:          uuid.New(),
		Name:        "구름 젤리",
		Flavor:      enums.FlavorPeach,
		Sweetness:   70,
		Sourness:    10,
		Texture:     enums.TextureSoft,
		Color:       "#FFB6C1",
		CreatorID:   uuid.New(),
		CreatorName: "메이커",
	}
	require.NoError(t, client.DB().Create(&jelly).Error)
	return jelly.ID
}

func jellyVotes(t *testing.T, client *db.Client, id uuid.UUID) int {
	t.Helper()
	var jelly models.Jelly
	require.NoError(t, client.DB().First(&jelly, "id = ?", id).Error)
	return jelly.Votes
}

func voteCounter(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "votes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestVoteOncePerUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	jellyID := seedJelly(t, f.client)
	userID := uuid.New()

	votes, err := f.ledger.Vote(ctx, jellyID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, votes)
	assert.Equal(t, 1, jellyVotes(t, f.client, jellyID))

	_, err = f.ledger.Vote(ctx, jellyID, userID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, "already voted", pkgerrors.As(err).Message())
	assert.Equal(t, 1, jellyVotes(t, f.client, jellyID))

	voted, err := f.ledger.HasVoted(ctx, userID, jellyID)
	require.NoError(t, err)
	assert.True(t, voted)

	assert.Equal(t, float64(1), voteCounter(t, f.reg, metrics.VoteAccepted))
	assert.Equal(t, float64(1), voteCounter(t, f.reg, metrics.VoteDuplicate))
	assert.Empty(t, f.locks.held)
}

func TestVoteDifferentUsersAccumulate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	jellyID := seedJelly(t, f.client)

	for i := 1; i <= 3; i++ {
		votes, err := f.ledger.Vote(ctx, jellyID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, i, votes)
	}

	var events int64
	require.NoError(t, f.client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventJellyVoted).Count(&events).Error)
	assert.Equal(t, int64(3), events)
}

func TestVoteUnknownJelly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.ledger.Vote(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Vote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVoteHeldLockRejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	jellyID := seedJelly(t, f.client)
	userID := uuid.New()
	f.locks.held[f.locks.VoteLockKey(userID.String(), jellyID.String())] = true

	_, err := f.ledger.Vote(context.Background(), jellyID, userID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, "vote already in progress", pkgerrors.As(err).Message())
	assert.Equal(t, 0, jellyVotes(t, f.client, jellyID))
	assert.Equal(t, float64(1), voteCounter(t, f.reg, metrics.VoteLocked))
}

func TestVoteProceedsWhenLockStoreFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.locks.setErr = errors.New("redis down")
	jellyID := seedJelly(t, f.client)

	votes, err := f.ledger.Vote(context.Background(), jellyID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, votes)
}

func TestVotedJellyIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	first := seedJelly(t, f.client)
	second := seedJelly(t, f.client)
	seedJelly(t, f.client)

	_, err := f.ledger.Vote(ctx, first, userID)
	require.NoError(t, err)
	_, err = f.ledger.Vote(ctx, second, userID)
	require.NoError(t, err)

	ids, err := f.ledger.VotedJellyIDs(ctx, userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first, second}, ids)

	none, err := f.ledger.VotedJellyIDs(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteForJellyTx(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	target := seedJelly(t, f.client)
	other := seedJelly(t, f.client)
	voters := []uuid.UUID{uuid.New(), uuid.New()}
	for _, v := range voters {
		_, err := f.ledger.Vote(ctx, target, v)
		require.NoError(t, err)
	}
	_, err := f.ledger.Vote(ctx, other, voters[0])
	require.NoError(t, err)

	var result CascadeResult
	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = f.ledger.DeleteForJellyTx(tx, target)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Removed)
	assert.ElementsMatch(t, voters, result.VoterIDs)

	voted, err := f.ledger.HasVoted(ctx, voters[0], other)
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = f.ledger.HasVoted(ctx, voters[1], target)
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestConcurrentVotesWithoutLockCountOnce(t *testing.T) {
	t.Parallel()

	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	ledger, err := NewLedger(LedgerParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Outbox:  outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop()),
		Metrics: metrics.NewStorefront(reg),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	jellyID := seedJelly(t, client)
	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	const attempts = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted = map[uuid.UUID]int{}
		others   []error
	)
	for _, userID := range voters {
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Vote(ctx, jellyID, userID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					accepted[userID]++
				case !pkgerrors.HasCode(err, pkgerrors.CodeConflict):
					others = append(others, err)
				}
			}()
		}
	}
	wg.Wait()

	require.Empty(t, others)
	for _, userID := range voters {
		assert.Equal(t, 1, accepted[userID], "user %s", userID)
	}
	assert.Equal(t, len(voters), jellyVotes(t, client, jellyID))

	var rows int64
	require.NoError(t, client.DB().Model(&models.Vote{}).Where("jelly_id = ?", jellyID).Count(&rows).Error)
	assert.Equal(t, int64(len(voters)), rows)
	assert.Equal(t, float64(len(voters)*(attempts-1)), voteCounter(t, reg, metrics.VoteDuplicate))
}
