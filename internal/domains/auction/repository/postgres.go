package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-backend/internal/domains/auction/model"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/logger"
)

const (
	auctionCacheKeyPrefix = "auction:"
	auctionCacheTTL       = 5 * time.Minute
)

type postgresAuctionRepository struct {
	db    *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresAuctionRepository creates a new auction repository backed by
// PostgreSQL with a Redis read-through cache for single records
func NewPostgresAuctionRepository(db *pgxpool.Pool, cache cache.Cache) AuctionRepository {
	return &postgresAuctionRepository{db: db, cache: cache}
}

func auctionCacheKey(id uuid.UUID) string {
	return auctionCacheKeyPrefix + id.String()
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresAuctionRepository) Create(ctx context.Context, auction *model.Auction) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO auctions (
				id, seller_id, title, description, category, condition, tags,
				start_price, current_price, reserve_price,
				start_time, end_time, status, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

		_, err := tx.Exec(ctx, query,
			auction.ID,
			auction.SellerID,
			auction.Title,
			auction.Description,
			auction.Category,
			auction.Condition,
			auction.Tags,
			auction.StartPrice,
			auction.CurrentPrice,
			auction.ReservePrice,
			auction.StartTime,
			auction.EndTime,
			auction.Status,
			auction.Version,
			auction.CreatedAt,
			auction.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert auction: %w", err)
		}

		for _, img := range auction.Images {
			_, err := tx.Exec(ctx, `
				INSERT INTO auction_images (
					id, auction_id, url, storage_key, alt_text, is_primary, sort_order
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				img.ID, img.AuctionID, img.URL, img.StorageKey,
				img.AltText, img.IsPrimary, img.SortOrder,
			)
			if err != nil {
				return fmt.Errorf("failed to insert auction image: %w", err)
			}
		}

		return nil
	})
}

// =====================================================
// READ
// =====================================================

func (r *postgresAuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	cacheKey := auctionCacheKey(id)

	var cached model.Auction
	found, err := r.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		// Cache problems must not take down reads
		logger.Error("auction cache read failed", err)
	}
	if found {
		return &cached, nil
	}

	auction, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, auction, auctionCacheTTL); err != nil {
		logger.Error("auction cache write failed", err)
	}

	return auction, nil
}

func (r *postgresAuctionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	return r.getByID(ctx, id)
}

func (r *postgresAuctionRepository) getByID(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	query := `
		SELECT id, seller_id, title, description, category, condition, tags,
		       start_price, current_price, reserve_price,
		       start_time, end_time, status, version, created_at, updated_at
		FROM auctions
		WHERE id = $1`

	var a model.Auction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.SellerID, &a.Title, &a.Description, &a.Category, &a.Condition, &a.Tags,
		&a.StartPrice, &a.CurrentPrice, &a.ReservePrice,
		&a.StartTime, &a.EndTime, &a.Status, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	if a.Images, err = r.loadImages(ctx, id); err != nil {
		return nil, err
	}
	if a.Bids, err = r.loadBids(ctx, id); err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *postgresAuctionRepository) loadImages(ctx context.Context, auctionID uuid.UUID) ([]model.AuctionImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, auction_id, url, storage_key, alt_text, is_primary, sort_order
		FROM auction_images
		WHERE auction_id = $1
		ORDER BY sort_order ASC`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load auction images: %w", err)
	}
	defer rows.Close()

	images := make([]model.AuctionImage, 0)
	for rows.Next() {
		var img model.AuctionImage
		if err := rows.Scan(&img.ID, &img.AuctionID, &img.URL, &img.StorageKey,
			&img.AltText, &img.IsPrimary, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan auction image: %w", err)
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

func (r *postgresAuctionRepository) loadBids(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, auction_id, bidder_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY created_at ASC`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	return bids, rows.Err()
}

// =====================================================
// LIST
// =====================================================

func (r *postgresAuctionRepository) List(ctx context.Context, filter AuctionFilter, now time.Time) ([]model.Auction, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	addArg := func(v interface{}) string {
		args = append(args, v)
		placeholder := fmt.Sprintf("$%d", argPos)
		argPos++
		return placeholder
	}

	// Status filters match the effective status, so the stored column is
	// only trusted for the terminal states.
	switch filter.Status {
	case model.StatusUpcoming:
		p := addArg(now)
		conditions = append(conditions,
			fmt.Sprintf("status = 'upcoming' AND start_time > %s", p))
	case model.StatusLive:
		p := addArg(now)
		conditions = append(conditions,
			fmt.Sprintf("status IN ('upcoming', 'live') AND start_time <= %s AND end_time > %s", p, p))
	case model.StatusEnded:
		p := addArg(now)
		conditions = append(conditions,
			fmt.Sprintf("(status = 'ended' OR (status IN ('upcoming', 'live') AND end_time <= %s))", p))
	case model.StatusCancelled:
		conditions = append(conditions, "status = 'cancelled'")
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = %s", addArg(filter.Category)))
	}
	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = %s", addArg(*filter.SellerID)))
	}
	if filter.Search != "" {
		p := addArg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM auctions WHERE " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(`
		SELECT a.id, a.seller_id, a.title, a.description, a.category, a.condition, a.tags,
		       a.start_price, a.current_price, a.reserve_price,
		       a.start_time, a.end_time, a.status, a.version, a.created_at, a.updated_at,
		       (SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id) AS bid_count
		FROM auctions a
		WHERE %s
		ORDER BY a.end_time ASC
		LIMIT %s OFFSET %s`, where, addArg(filter.Limit), addArg(offset))

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	auctions := make([]model.Auction, 0)
	for rows.Next() {
		var a model.Auction
		var bidCount int
		if err := rows.Scan(
			&a.ID, &a.SellerID, &a.Title, &a.Description, &a.Category, &a.Condition, &a.Tags,
			&a.StartPrice, &a.CurrentPrice, &a.ReservePrice,
			&a.StartTime, &a.EndTime, &a.Status, &a.Version, &a.CreatedAt, &a.UpdatedAt,
			&bidCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan auction: %w", err)
		}
		// The listing does not hydrate full bid rows; carry the count only
		a.Bids = make([]model.Bid, bidCount)
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.hydrateImages(ctx, auctions); err != nil {
		return nil, 0, err
	}

	return auctions, total, nil
}

func (r *postgresAuctionRepository) hydrateImages(ctx context.Context, auctions []model.Auction) error {
	if len(auctions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(auctions))
	index := make(map[uuid.UUID]*model.Auction, len(auctions))
	for i := range auctions {
		ids[i] = auctions[i].ID
		index[auctions[i].ID] = &auctions[i]
		auctions[i].Images = make([]model.AuctionImage, 0)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, auction_id, url, storage_key, alt_text, is_primary, sort_order
		FROM auction_images
		WHERE auction_id = ANY($1)
		ORDER BY sort_order ASC`, ids)
	if err != nil {
		return fmt.Errorf("failed to load auction images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img model.AuctionImage
		if err := rows.Scan(&img.ID, &img.AuctionID, &img.URL, &img.StorageKey,
			&img.AltText, &img.IsPrimary, &img.SortOrder); err != nil {
			return fmt.Errorf("failed to scan auction image: %w", err)
		}
		if a, ok := index[img.AuctionID]; ok {
			a.Images = append(a.Images, img)
		}
	}

	return rows.Err()
}

// =====================================================
// WRITE
// =====================================================

func (r *postgresAuctionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int) error {
	result, err := r.db.Exec(ctx, `
		UPDATE auctions
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3`,
		status, id, version)
	if err != nil {
		return fmt.Errorf("failed to update auction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *postgresAuctionRepository) PlaceBid(ctx context.Context, auction *model.Auction, bid *model.Bid, newStatus string) error {
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// The conditional update is the whole concurrency story: if another
		// bid (or a status sweep) bumped the version since we read, zero
		// rows match and the caller retries against the fresh state.
		result, err := tx.Exec(ctx, `
			UPDATE auctions
			SET current_price = $1, status = $2, version = version + 1, updated_at = NOW()
			WHERE id = $3 AND version = $4`,
			bid.Amount, newStatus, auction.ID, auction.Version)
		if err != nil {
			return fmt.Errorf("failed to update auction price: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrVersionMismatch
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bids (id, auction_id, bidder_id, amount, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, auction.ID)
	return nil
}

func (r *postgresAuctionRepository) ListBids(ctx context.Context, auctionID uuid.UUID, page, limit int) ([]model.Bid, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, `
		SELECT id, auction_id, bidder_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, auctionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	return bids, total, rows.Err()
}

// =====================================================
// SWEEPS
// =====================================================

func (r *postgresAuctionRepository) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE auctions
		SET status = 'ended', version = version + 1, updated_at = NOW()
		WHERE status IN ('upcoming', 'live') AND end_time <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to close ended auctions: %w", err)
	}

	count := result.RowsAffected()
	if count > 0 {
		// Cheap broad invalidation; sweeps run infrequently
		if err := r.cache.DeletePattern(ctx, auctionCacheKeyPrefix+"*"); err != nil {
			logger.Error("auction cache sweep invalidation failed", err)
		}
	}

	return count, nil
}

func (r *postgresAuctionRepository) OpenScheduled(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE auctions
		SET status = 'live', version = version + 1, updated_at = NOW()
		WHERE status = 'upcoming' AND start_time <= $1 AND end_time > $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to open scheduled auctions: %w", err)
	}

	count := result.RowsAffected()
	if count > 0 {
		if err := r.cache.DeletePattern(ctx, auctionCacheKeyPrefix+"*"); err != nil {
			logger.Error("auction cache sweep invalidation failed", err)
		}
	}

	return count, nil
}

func (r *postgresAuctionRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, auctionCacheKey(id)); err != nil {
		logger.Error("auction cache invalidation failed", err)
	}
}
