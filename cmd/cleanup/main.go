package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
)

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

	fmt.Println("Start cleanup...")

	result := database.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		log.Fatalf("Failed to delete expired sessions: %v", result.Error)
	}
	fmt.Printf("✅ Deleted %d expired sessions\n", result.RowsAffected)

	fmt.Println("Cleanup complete")
}
