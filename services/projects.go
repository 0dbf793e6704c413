package services

import (
	"errors"

	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"gorm.io/gorm"
)

// ProjectView is a project joined with its author summary and like aggregates.
type ProjectView struct {
	models.ThesisProject
	User                 models.UserSummary `json:"user"`
	Likes                int                `json:"likes"`
	UserLikeIDs          []*string          `json:"userLikeIds"`
	IsLikedByTheUserAuth bool               `json:"isLikedByTheUserAuth"`
}

// CreateProjectInput carries the fields a client supplies for a new project.
type CreateProjectInput struct {
	UserID      string
	Title       string
	Description string
	URLPdf      string
	URLImg      *string
}

// CreateProject inserts a project for its author. Status defaults to pending.
func CreateProject(in CreateProjectInput) error {
	project := models.ThesisProject{
		Title:       in.Title,
		Description: in.Description,
		URLPdf:      in.URLPdf,
		URLImg:      in.URLImg,
		Status:      models.StatusPending,
		UserID:      in.UserID,
	}
	return database.DB.Create(&project).Error
}

// FindOneProject returns the aggregated view of a single project for the
// given viewer, or nil when no such project exists.
func FindOneProject(projectID, viewerID string) (*ProjectView, error) {
	var project models.ThesisProject
	if err := database.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	views, err := assembleProjectViews([]models.ThesisProject{project}, viewerID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		// author row missing; the author join is an inner join
		return nil, nil
	}
	return &views[0], nil
}

// FindProjectsByUser returns aggregated project views visible to the viewer,
// most recent first. Role "user" sees only projects it authored or reviews as
// a committee member; role "admin" sees everything.
func FindProjectsByUser(viewerID string, viewerRole models.Role) ([]ProjectView, error) {
	query := database.DB.Model(&models.ThesisProject{}).
		Order("thesis_projects.created_at DESC")

	if viewerRole != models.RoleAdmin {
		// Left join so repeated committee rows cannot drop or duplicate a
		// project once deduplicated.
		query = query.
			Joins("LEFT JOIN committee_members ON committee_members.thesis_project_id = thesis_projects.id").
			Where("thesis_projects.user_id = ? OR committee_members.user_id = ?", viewerID, viewerID).
			Distinct("thesis_projects.*")
	}

	var projects []models.ThesisProject
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}

	return assembleProjectViews(projects, viewerID)
}

// assembleProjectViews joins authors and like rows onto projects, preserving
// the input order.
func assembleProjectViews(projects []models.ThesisProject, viewerID string) ([]ProjectView, error) {
	views := make([]ProjectView, 0, len(projects))
	if len(projects) == 0 {
		return views, nil
	}

	projectIDs := make([]string, 0, len(projects))
	authorIDs := make([]string, 0, len(projects))
	for _, project := range projects {
		projectIDs = append(projectIDs, project.ID)
		authorIDs = append(authorIDs, project.UserID)
	}

	var authors []models.User
	if err := database.DB.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[string]models.User, len(authors))
	for _, author := range authors {
		authorByID[author.ID] = author
	}

	var likes []models.UserLike
	if err := database.DB.Where("thesis_project_id IN ?", projectIDs).Find(&likes).Error; err != nil {
		return nil, err
	}
	likersByProject := make(map[string][]string, len(projectIDs))
	for _, like := range likes {
		likersByProject[like.ThesisProjectID] = append(likersByProject[like.ThesisProjectID], like.UserID)
	}

	for _, project := range projects {
		author, ok := authorByID[project.UserID]
		if !ok {
			continue
		}

		likerIDs := likersByProject[project.ID]
		userLikeIDs := make([]*string, 0, len(likerIDs))
		liked := false
		for _, likerID := range likerIDs {
			likerID := likerID
			userLikeIDs = append(userLikeIDs, &likerID)
			if likerID == viewerID {
				liked = true
			}
		}
		if len(userLikeIDs) == 0 {
			// zero likes serialize as [null], matching the aggregate the
			// frontend already consumes
			userLikeIDs = append(userLikeIDs, nil)
		}

		views = append(views, ProjectView{
			ThesisProject:        project,
			User:                 author.Summary(),
			Likes:                len(likerIDs),
			UserLikeIDs:          userLikeIDs,
			IsLikedByTheUserAuth: liked,
		})
	}

	return views, nil
}
