package services

import (
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
)

// CommentView is a comment joined with its author summary.
type CommentView struct {
	models.Comment
	User models.UserSummary `json:"user"`
}

// CreateCommentInput carries the fields a client supplies for a new comment.
// No existence check is performed on ProjectID or UserID at this layer.
type CreateCommentInput struct {
	ProjectID string
	UserID    string
	Content   string
}

// CreateComment inserts a comment row.
func CreateComment(in CreateCommentInput) error {
	comment := models.Comment{
		Content:         in.Content,
		UserID:          in.UserID,
		ThesisProjectID: in.ProjectID,
		IsVisible:       true,
	}
	return database.DB.Create(&comment).Error
}

// GetCommentsByProjectID returns every comment on a project joined with its
// author, as a flat list. Hidden comments are not filtered and replies are
// not grouped.
func GetCommentsByProjectID(projectID string) ([]CommentView, error) {
	var comments []models.Comment
	if err := database.DB.Where("thesis_project_id = ?", projectID).Find(&comments).Error; err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	authorIDs := make([]string, 0, len(comments))
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.UserID)
	}

	var authors []models.User
	if err := database.DB.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[string]models.User, len(authors))
	for _, author := range authors {
		authorByID[author.ID] = author
	}

	for _, comment := range comments {
		author, ok := authorByID[comment.UserID]
		if !ok {
			// author join is an inner join
			continue
		}
		views = append(views, CommentView{
			Comment: comment,
			User:    author.Summary(),
		})
	}

	return views, nil
}
