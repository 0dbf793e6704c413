package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	name     string
	lastName string
	email    string
	role     models.Role
}

var sampleUsers = []seedUser{
	{"Alma", "Director", "alma@portal.edu", models.RoleAdmin},
	{"Bruno", "Castillo", "bruno@portal.edu", models.RoleUser},
	{"Carla", "Mendez", "carla@portal.edu", models.RoleUser},
	{"Diego", "Fuentes", "diego@portal.edu", models.RoleUser},
}

type seedProject struct {
	title       string
	description string
	authorEmail string
}

var sampleProjects = []seedProject{
	{"Distributed Cache Coherence", "A study of invalidation strategies in edge caches.", "bruno@portal.edu"},
	{"Low-Power Mesh Routing", "Energy-aware routing for sensor meshes.", "carla@portal.edu"},
	{"Static Analysis of Build Scripts", "Detecting nondeterminism in build pipelines.", "bruno@portal.edu"},
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("🌱 Starting portal seed...")

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte("portal-demo"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	usersByEmail := make(map[string]models.User)
	for _, entry := range sampleUsers {
		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", entry.email).Count(&count)
		if count > 0 {
			var existing models.User
			database.DB.Where("email = ?", entry.email).First(&existing)
			usersByEmail[entry.email] = existing
			continue
		}

		user := models.User{
			PasswordHash: string(hashedBytes),
			Name:         entry.name,
			LastName:     entry.lastName,
			Email:        entry.email,
			IsConfirmed:  true,
			Role:         entry.role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", entry.email, err)
		}
		usersByEmail[entry.email] = user
	}
	fmt.Printf("✅ Seeded %d users\n", len(usersByEmail))

	projectCount := 0
	for _, entry := range sampleProjects {
		author := usersByEmail[entry.authorEmail]

		var count int64
		database.DB.Model(&models.ThesisProject{}).Where("title = ?", entry.title).Count(&count)
		if count > 0 {
			continue
		}

		project := models.ThesisProject{
			Title:       entry.title,
			Description: entry.description,
			URLPdf:      fmt.Sprintf("https://files.portal.edu/%s.pdf", models.NewID()),
			Status:      models.StatusPending,
			UserID:      author.ID,
		}
		if err := database.DB.Create(&project).Error; err != nil {
			log.Fatalf("Failed to seed project %q: %v", entry.title, err)
		}
		projectCount++

		// Diego reviews everything he did not author
		reviewer := usersByEmail["diego@portal.edu"]
		if reviewer.ID != author.ID {
			member := models.CommitteeMember{
				UserID:          reviewer.ID,
				ThesisProjectID: project.ID,
			}
			if err := database.DB.Create(&member).Error; err != nil {
				log.Fatalf("Failed to seed committee member: %v", err)
			}
		}

		comment := models.Comment{
			Content:         fmt.Sprintf("Looking forward to reading %q.", entry.title),
			UserID:          reviewer.ID,
			IsVisible:       true,
			ThesisProjectID: project.ID,
		}
		if err := database.DB.Create(&comment).Error; err != nil {
			log.Fatalf("Failed to seed comment: %v", err)
		}

		like := models.UserLike{
			UserID:          reviewer.ID,
			ThesisProjectID: project.ID,
		}
		if err := database.DB.Create(&like).Error; err != nil {
			log.Fatalf("Failed to seed like: %v", err)
		}
	}
	fmt.Printf("✅ Seeded %d projects with reviews, comments and likes\n", projectCount)

	fmt.Println("🌱 Seed complete")
}
