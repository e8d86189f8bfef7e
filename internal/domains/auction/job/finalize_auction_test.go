package job

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/domains/auction/model"
	"marketplace-backend/internal/domains/auction/repository"
	"marketplace-backend/internal/infrastructure/queue"
	"marketplace-backend/internal/shared"
)

type stubAuctionRepo struct {
	mu            sync.Mutex
	auctions      map[uuid.UUID]*model.Auction
	statusUpdates int
}

func newStubAuctionRepo() *stubAuctionRepo {
	return &stubAuctionRepo{auctions: make(map[uuid.UUID]*model.Auction)}
}

func (s *stubAuctionRepo) Create(ctx context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = a
	return nil
}

func (s *stubAuctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	return s.GetByIDForUpdate(ctx, id)
}

func (s *stubAuctionRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, model.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAuctionRepo) List(ctx context.Context, filter repository.AuctionFilter, now time.Time) ([]model.Auction, int64, error) {
	return nil, 0, nil
}

func (s *stubAuctionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.auctions[id]
	if a.Version != version {
		return model.ErrVersionMismatch
	}
	a.Status = status
	a.Version++
	s.statusUpdates++
	return nil
}

func (s *stubAuctionRepo) PlaceBid(ctx context.Context, auction *model.Auction, bid *model.Bid, newStatus string) error {
	return nil
}

func (s *stubAuctionRepo) ListBids(ctx context.Context, auctionID uuid.UUID, page, limit int) ([]model.Bid, int64, error) {
	return nil, 0, nil
}

func (s *stubAuctionRepo) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (s *stubAuctionRepo) OpenScheduled(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func finalizeTask(t *testing.T, auctionID uuid.UUID) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.FinalizeAuctionPayload{AuctionID: auctionID})
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeFinalizeAuction, payload)
}

func TestFinalizeAuctionHandler(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	newHandler := func(repo *stubAuctionRepo) *FinalizeAuctionHandler {
		h := NewFinalizeAuctionHandler(repo)
		h.now = func() time.Time { return now }
		return h
	}

	t.Run("closes a live auction past its end time", func(t *testing.T) {
		repo := newStubAuctionRepo()
		a := &model.Auction{
			ID:        uuid.New(),
			Status:    model.StatusLive,
			StartTime: now.Add(-2 * time.Hour),
			EndTime:   now.Add(-time.Minute),
			Version:   1,
		}
		require.NoError(t, repo.Create(ctx, a))

		h := newHandler(repo)
		require.NoError(t, h.ProcessTask(ctx, finalizeTask(t, a.ID)))

		assert.Equal(t, model.StatusEnded, repo.auctions[a.ID].Status)
		assert.Equal(t, 1, repo.statusUpdates)
	})

	t.Run("re-delivery is a no-op", func(t *testing.T) {
		repo := newStubAuctionRepo()
		a := &model.Auction{
			ID:        uuid.New(),
			Status:    model.StatusLive,
			StartTime: now.Add(-2 * time.Hour),
			EndTime:   now.Add(-time.Minute),
			Version:   1,
		}
		require.NoError(t, repo.Create(ctx, a))

		h := newHandler(repo)
		task := finalizeTask(t, a.ID)
		require.NoError(t, h.ProcessTask(ctx, task))
		require.NoError(t, h.ProcessTask(ctx, task))

		assert.Equal(t, model.StatusEnded, repo.auctions[a.ID].Status)
		assert.Equal(t, 1, repo.statusUpdates)
	})

	t.Run("cancelled auction stays cancelled", func(t *testing.T) {
		repo := newStubAuctionRepo()
		a := &model.Auction{
			ID:        uuid.New(),
			Status:    model.StatusCancelled,
			StartTime: now.Add(-2 * time.Hour),
			EndTime:   now.Add(-time.Minute),
			Version:   2,
		}
		require.NoError(t, repo.Create(ctx, a))

		h := newHandler(repo)
		require.NoError(t, h.ProcessTask(ctx, finalizeTask(t, a.ID)))

		assert.Equal(t, model.StatusCancelled, repo.auctions[a.ID].Status)
		assert.Equal(t, 0, repo.statusUpdates)
	})

	t.Run("missing auction does not fail the task", func(t *testing.T) {
		repo := newStubAuctionRepo()
		h := newHandler(repo)

		assert.NoError(t, h.ProcessTask(ctx, finalizeTask(t, uuid.New())))
	})

	t.Run("early delivery is retried", func(t *testing.T) {
		repo := newStubAuctionRepo()
		a := &model.Auction{
			ID:        uuid.New(),
			Status:    model.StatusLive,
			StartTime: now.Add(-time.Hour),
			EndTime:   now.Add(time.Minute),
			Version:   1,
		}
		require.NoError(t, repo.Create(ctx, a))

		h := newHandler(repo)
		assert.Error(t, h.ProcessTask(ctx, finalizeTask(t, a.ID)))
		assert.Equal(t, model.StatusLive, repo.auctions[a.ID].Status)
	})
}
