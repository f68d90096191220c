package main

import (
	"flag"
	"fmt"
	"log"

	"southcoast-promotion/internal/config"
	"southcoast-promotion/internal/database"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/repositories"
	"southcoast-promotion/internal/utils"
)

func main() {
	var (
		email     = flag.String("email", "", "Admin email address")
		password  = flag.String("password", "", "Admin password (min 8 characters)")
		firstName = flag.String("first-name", "Admin", "First name")
		lastName  = flag.String("last-name", "User", "Last name")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: go run cmd/create-admin/main.go -email admin@example.com -password secret123")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	req := &models.UserCreateRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
	}
	if err := req.Validate(); err != nil {
		log.Fatalf("Invalid admin details: %v", err)
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	repo := repositories.NewUserRepository(db.DB)
	user, err := repo.Create(req, hash, models.UserRoleAdmin)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin user %d (%s)\n", user.ID, user.Email)
}
