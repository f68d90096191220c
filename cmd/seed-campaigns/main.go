package main

import (
	"fmt"
	"log"
	"time"

	"southcoast-promotion/internal/config"
	"southcoast-promotion/internal/database"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/repositories"
)

func main() {
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

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repositories.NewCampaignRepository(db.DB)

	nextSaturday := time.Now().AddDate(0, 0, (int(time.Saturday)-int(time.Now().Weekday())+7)%7+7)

	seeds := []models.CampaignCreateRequest{
		{
			Name:           "Brighton Seafront Circuit",
			Description:    "Mobile billboard loop along the seafront and pier approaches.",
			Location:       "Brighton",
			RunDate:        nextSaturday,
			RunTime:        "09:00 - 17:00",
			TotalSlots:     8,
			AdvertsPerSlot: 40,
			PricePerSlot:   12500, // £125.00
		},
		{
			Name:           "Portsmouth Gunwharf Run",
			Description:    "High-footfall retail quarter circuit, weekends.",
			Location:       "Portsmouth",
			RunDate:        nextSaturday.AddDate(0, 0, 7),
			RunTime:        "10:00 - 18:00",
			TotalSlots:     6,
			AdvertsPerSlot: 35,
			PricePerSlot:   15000, // £150.00
		},
		{
			Name:           "Southampton Match Day",
			Description:    "Stadium approach routes before and after kick-off.",
			Location:       "Southampton",
			RunDate:        nextSaturday.AddDate(0, 0, 14),
			RunTime:        "11:00 - 19:00",
			TotalSlots:     10,
			AdvertsPerSlot: 50,
			PricePerSlot:   17500, // £175.00
		},
		{
			Name:           "Bournemouth Beach Season",
			Description:    "Promenade and town centre loop through peak season.",
			Location:       "Bournemouth",
			RunDate:        nextSaturday.AddDate(0, 0, 21),
			RunTime:        "09:00 - 17:00",
			TotalSlots:     8,
			AdvertsPerSlot: 40,
			PricePerSlot:   12500,
		},
	}

	for _, seed := range seeds {
		campaign, err := repo.Create(&seed)
		if err != nil {
			log.Fatalf("Failed to seed campaign %q: %v", seed.Name, err)
		}
		fmt.Printf("Seeded campaign %d: %s (%s)\n", campaign.ID, campaign.Name, campaign.DisplayDate())
	}

	fmt.Println("Seeding complete!")
}
