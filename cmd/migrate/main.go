package main

import (
	"fmt"
	"log"
	"os"

	"macromate/internal/config"
	"macromate/internal/models"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	cfg := config.Load()

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Starting database migration...")

	if err := db.AutoMigrate(
		&models.Macro{},
		&models.Feedback{},
		&models.Template{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Creating additional indexes...")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_feedback_type_created ON feedback(feedback_type, created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_feedback_generation_created ON feedback(generation_type, created_at)")

	if len(os.Args) > 1 && os.Args[1] == "--seed" {
		log.Println("Seeding default templates...")
		seedDefaultTemplates(db, cfg)
	}

	log.Println("Migration process completed!")
}

func seedDefaultTemplates(db *gorm.DB, cfg *config.Config) {
	criteria := make(models.ScoreMap, len(cfg.Scoring.Dimensions))
	for _, dim := range cfg.Scoring.Dimensions {
		criteria[dim] = cfg.Scoring.MaxScore
	}

	seeds := []models.Template{
		{
			Category:        "refund",
			Template:        "Acknowledge the request, confirm the order details, state the refund timeline and apologize for the inconvenience.",
			ScoringCriteria: criteria,
		},
		{
			Category:        "shipping_issue",
			Template:        "Apologize for the delay, share the current tracking status and offer a concrete next step.",
			ScoringCriteria: criteria,
		},
	}

	for _, seed := range seeds {
		var existing models.Template
		if err := db.Where("category = ?", seed.Category).First(&existing).Error; err != nil {
			db.Create(&seed)
			log.Printf("Created template %q", seed.Category)
		}
	}
}
