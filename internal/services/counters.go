package services

import (
	"inpstories/internal/models"

	"gorm.io/gorm"
)

// countComments stores the number of comments at any depth under a testimonial.
func countComments(tx *gorm.DB, testimonialID string) error {
	var n int64
	if err := tx.Model(&models.Comment{}).Where("testimonial_id = ?", testimonialID).Count(&n).Error; err != nil {
		return err
	}
	return tx.Model(&models.Testimonial{}).Where("id = ?", testimonialID).UpdateColumn("comments_count", n).Error
}

// countReplies stores the number of direct replies of a comment.
func countReplies(tx *gorm.DB, commentID string) error {
	var n int64
	if err := tx.Model(&models.Comment{}).Where("parent_id = ?", commentID).Count(&n).Error; err != nil {
		return err
	}
	return tx.Model(&models.Comment{}).Where("id = ?", commentID).UpdateColumn("replies_count", n).Error
}
