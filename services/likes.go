package services

import (
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"gorm.io/gorm/clause"
)

// CreateUserLike records that a user likes a project. A repeated like for the
// same (user, project) pair is a no-op.
func CreateUserLike(userID, projectID string) error {
	like := models.UserLike{
		UserID:          userID,
		ThesisProjectID: projectID,
	}
	return database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
}

// DeleteUserLike removes a user's like from a project if present.
func DeleteUserLike(userID, projectID string) error {
	return database.DB.
		Where("user_id = ? AND thesis_project_id = ?", userID, projectID).
		Delete(&models.UserLike{}).Error
}
