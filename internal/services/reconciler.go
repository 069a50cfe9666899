package services

import (
	"context"
	"sync"
	"time"

	"inpstories/internal/logger"
	"inpstories/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	reconcileQueueSize = 1000
	reconcileBatchSize = 50
	reconcileFlush     = 500 * time.Millisecond

	// maxOrphanPasses bounds the sweep that removes replies whose parent is gone.
	// Each pass removes one level of a detached branch.
	maxOrphanPasses = 64
)

// Reconciler recomputes stored counters from the rows they summarize and removes
// comments and likes left behind by interrupted deletes.
type Reconciler struct {
	db      *gorm.DB
	queue   chan string
	pending map[string]bool
	mu      sync.Mutex
	flush   time.Duration
	log     zerolog.Logger
}

func NewReconciler(conn *gorm.DB) *Reconciler {
	return &Reconciler{
		db:      conn,
		queue:   make(chan string, reconcileQueueSize),
		pending: make(map[string]bool),
		flush:   reconcileFlush,
		log:     logger.WithComponent("reconciler"),
	}
}

// Schedule queues a testimonial for recount. Repeated calls before the worker
// gets to it are collapsed, and a full queue drops the request.
func (r *Reconciler) Schedule(testimonialID string) {
	r.mu.Lock()
	if r.pending[testimonialID] {
		r.mu.Unlock()
		return
	}
	r.pending[testimonialID] = true
	r.mu.Unlock()

	select {
	case r.queue <- testimonialID:
	default:
		r.mu.Lock()
		delete(r.pending, testimonialID)
		r.mu.Unlock()
		r.log.Warn().Str("testimonial_id", testimonialID).Msg("recount queue full, dropping")
	}
}

// Run drains the queue in batches until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	batch := make([]string, 0, reconcileBatchSize)
	ticker := time.NewTicker(r.flush)
	defer ticker.Stop()

	for {
		select {
		case id := <-r.queue:
			batch = append(batch, id)
			if len(batch) >= reconcileBatchSize {
				r.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) processBatch(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := r.Recount(ctx, id); err != nil {
			r.log.Error().Err(err).Str("testimonial_id", id).Msg("recount failed")
		}

		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}
}

// Recount repairs one testimonial's thread: detached replies and likes of missing
// comments are removed, then every counter is recomputed.
func (r *Reconciler) Recount(ctx context.Context, testimonialID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pass := 0; pass < maxOrphanPasses; pass++ {
			res := tx.Exec(`DELETE FROM comments
				WHERE testimonial_id = ? AND parent_id IS NOT NULL
				AND parent_id NOT IN (SELECT id FROM comments)`, testimonialID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				break
			}
			r.log.Info().Str("testimonial_id", testimonialID).Int64("removed", res.RowsAffected).Msg("removed orphaned replies")
		}

		if err := tx.Exec(`DELETE FROM comment_likes WHERE comment_id NOT IN (SELECT id FROM comments)`).Error; err != nil {
			return err
		}

		if err := tx.Exec(`UPDATE comments SET
			replies_count = (SELECT COUNT(*) FROM comments AS child WHERE child.parent_id = comments.id),
			likes_count = (SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id)
			WHERE testimonial_id = ?`, testimonialID).Error; err != nil {
			return err
		}

		return tx.Exec(`UPDATE testimonials SET
			comments_count = (SELECT COUNT(*) FROM comments WHERE comments.testimonial_id = testimonials.id),
			likes_count = (SELECT COUNT(*) FROM testimonial_likes WHERE testimonial_likes.testimonial_id = testimonials.id)
			WHERE id = ?`, testimonialID).Error
	})
}

// RecountAll removes threads whose testimonial no longer exists and recounts
// every remaining testimonial. It returns how many testimonials were recounted.
func (r *Reconciler) RecountAll(ctx context.Context) (int, error) {
	conn := r.db.WithContext(ctx)

	res := conn.Exec(`DELETE FROM comments WHERE testimonial_id NOT IN (SELECT id FROM testimonials)`)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info().Int64("removed", res.RowsAffected).Msg("removed comments of deleted testimonials")
	}
	if err := conn.Exec(`DELETE FROM testimonial_likes WHERE testimonial_id NOT IN (SELECT id FROM testimonials)`).Error; err != nil {
		return 0, err
	}
	if err := conn.Exec(`DELETE FROM comment_likes WHERE comment_id NOT IN (SELECT id FROM comments)`).Error; err != nil {
		return 0, err
	}

	var ids []string
	if err := conn.Model(&models.Testimonial{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		if err := r.Recount(ctx, id); err != nil {
			r.log.Error().Err(err).Str("testimonial_id", id).Msg("recount failed")
			continue
		}
		count++
	}
	return count, nil
}

// StartPeriodic runs RecountAll every interval until ctx is cancelled.
func (r *Reconciler) StartPeriodic(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n, err := r.RecountAll(ctx)
				if err != nil {
					r.log.Error().Err(err).Msg("periodic recount failed")
					continue
				}
				r.log.Info().Int("testimonials", n).Msg("periodic recount finished")
			case <-ctx.Done():
				return
			}
		}
	}()
}
