package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thesisportal/backend/models"
	"github.com/thesisportal/backend/services"
)

// GetProjects handles GET /api/projects - role-scoped aggregated project list
func GetProjects(c *gin.Context) {
	userID := c.GetString("userID")
	role := models.Role(c.GetString("userRole"))

	projects, err := services.FindProjectsByUser(userID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /api/projects/:id - one aggregated project view
func GetProject(c *gin.Context) {
	view, err := services.FindOneProject(c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// CreateProject handles POST /api/projects - register a new thesis project
func CreateProject(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description" binding:"required"`
		URLPdf      string  `json:"urlPdf" binding:"required"`
		URLImg      *string `json:"urlImg"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := services.CreateProject(services.CreateProjectInput{
		UserID:      c.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
		URLPdf:      req.URLPdf,
		URLImg:      req.URLImg,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Project created"})
}
