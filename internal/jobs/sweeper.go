// Package jobs holds background maintenance loops.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shoptrack/shoptrack/internal/domain"
	"github.com/shoptrack/shoptrack/internal/events"
	"github.com/shoptrack/shoptrack/internal/repository"
	"github.com/shoptrack/shoptrack/internal/telemetry"
)

// SweeperConfig configures the cart abandonment sweeper.
type SweeperConfig struct {
	// Interval is how often to scan for stale carts
	Interval time.Duration

	// MaxAge is how long an active cart may go without updates before it is
	// considered abandoned
	MaxAge time.Duration

	// BatchSize caps how many carts one sweep marks abandoned
	BatchSize int32
}

// DefaultSweeperConfig returns production defaults: hourly sweeps, carts
// idle for 7 days are abandoned.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:  time.Hour,
		MaxAge:    7 * 24 * time.Hour,
		BatchSize: 500,
	}
}

// Datastore is the persistence surface the sweeper needs.
type Datastore interface {
	ListStaleActiveCarts(ctx context.Context, arg repository.ListStaleActiveCartsParams) ([]repository.Cart, error)
	ExecTx(ctx context.Context, fn func(repository.Querier) error) error
}

// Sweeper marks stale active carts as abandoned and records a cart-level
// abandoned event for each. Abandonment is the only status transition not
// driven by a user request.
type Sweeper struct {
	config    SweeperConfig
	store     Datastore
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

func NewSweeper(store Datastore, publisher events.Publisher, metrics *telemetry.BusinessMetrics, config SweeperConfig, logger *slog.Logger) *Sweeper {
	if config.Interval == 0 {
		config.Interval = time.Hour
	}
	if config.MaxAge == 0 {
		config.MaxAge = 7 * 24 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 500
	}
	return &Sweeper{
		config:    config,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start runs the sweep loop until the context is cancelled. One sweep runs
// immediately on startup.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("cart sweeper starting",
		"interval", s.config.Interval,
		"max_age", s.config.MaxAge,
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("cart sweeper stopping")
			return
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	abandoned, err := s.Sweep(ctx)
	if s.metrics != nil {
		s.metrics.RecordSweep(abandoned, err != nil)
	}
	if err != nil {
		s.logger.Error("cart sweep failed", "error", err)
		return
	}
	if abandoned > 0 {
		s.logger.Info("cart sweep completed", "abandoned", abandoned)
	}
}

// Sweep marks one batch of stale active carts abandoned. Each cart gets its
// own transaction so one failure does not roll back the batch. Returns how
// many carts were transitioned.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := pgtype.Timestamptz{
		Time:  time.Now().Add(-s.config.MaxAge),
		Valid: true,
	}

	stale, err := s.store.ListStaleActiveCarts(ctx, repository.ListStaleActiveCartsParams{
		UpdatedBefore: cutoff,
		Limit:         s.config.BatchSize,
	})
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, cart := range stale {
		if err := ctx.Err(); err != nil {
			return abandoned, err
		}

		event, err := s.abandonCart(ctx, cart)
		if err != nil {
			// a cart checked out mid-sweep matches no row; skip it quietly
			if !errors.Is(err, pgx.ErrNoRows) {
				s.logger.Warn("failed to abandon cart", "cart_id", cart.ID, "error", err)
			}
			continue
		}
		s.publisher.PublishCartEvent(event)
		abandoned++
	}
	return abandoned, nil
}

// abandonCart transitions one cart and records the abandoned event. The
// status filter on the update makes a concurrent checkout win cleanly: the
// update matches no row and the sweep skips the cart.
func (s *Sweeper) abandonCart(ctx context.Context, cart repository.Cart) (domain.CartEvent, error) {
	var event domain.CartEvent
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		marked, err := q.MarkCartAbandoned(ctx, cart.ID)
		if err != nil {
			return err
		}

		sessionSeconds := int32(0)
		if marked.CreatedAt.Valid && marked.AbandonedAt.Valid {
			sessionSeconds = int32(marked.AbandonedAt.Time.Sub(marked.CreatedAt.Time).Seconds())
		}

		row, err := q.CreateCartEvent(ctx, repository.CreateCartEventParams{
			CartID:                 marked.ID,
			UserID:                 marked.UserID,
			EventType:              string(domain.EventAbandoned),
			SessionDurationSeconds: sessionSeconds,
		})
		if err != nil {
			return err
		}

		event = domain.CartEvent{
			ID:                     row.ID,
			CartID:                 row.CartID,
			UserID:                 row.UserID,
			ProductID:              row.ProductID,
			EventType:              domain.EventType(row.EventType),
			QuantityChanged:        row.QuantityChanged,
			Timestamp:              row.Timestamp,
			SessionDurationSeconds: row.SessionDurationSeconds,
		}
		return nil
	})
	return event, err
}
