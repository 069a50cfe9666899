package services

import (
	"context"

	"inpstories/internal/models"

	"gorm.io/gorm"
)

// likeSet describes one like-membership table and the entity whose likes_count mirrors it.
type likeSet struct {
	column string
	owner  func() any
	member func(entityID, userID string) any
}

var (
	testimonialLikes = likeSet{
		column: "testimonial_id",
		owner:  func() any { return &models.Testimonial{} },
		member: func(entityID, userID string) any {
			return &models.TestimonialLike{TestimonialID: entityID, UserID: userID}
		},
	}
	commentLikes = likeSet{
		column: "comment_id",
		owner:  func() any { return &models.Comment{} },
		member: func(entityID, userID string) any {
			return &models.CommentLike{CommentID: entityID, UserID: userID}
		},
	}
)

// toggleLike flips userID's membership in the like set of entityID and stores the
// resulting set size. The caller has already checked that the entity exists.
func toggleLike(ctx context.Context, conn *gorm.DB, set likeSet, entityID, userID string) (*models.LikeResult, error) {
	res := &models.LikeResult{EntityID: entityID}

	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where(set.column+" = ? AND user_id = ?", entityID, userID).Delete(set.member("", ""))
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			res.Action = models.ActionUnliked
		} else {
			if err := tx.Create(set.member(entityID, userID)).Error; err != nil {
				return err
			}
			res.Action = models.ActionLiked
		}

		var count int64
		if err := tx.Model(set.member("", "")).Where(set.column+" = ?", entityID).Count(&count).Error; err != nil {
			return err
		}
		if err := tx.Model(set.owner()).Where("id = ?", entityID).UpdateColumn("likes_count", count).Error; err != nil {
			return err
		}

		res.LikesCount = int(count)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.LikedByUser = res.Action == models.ActionLiked
	return res, nil
}
