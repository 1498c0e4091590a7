package database

import (
	"fmt"
	"log"

	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func InitGorm(cfg *config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	var err error
	GormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")

	if err := Migrate(GormDB); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database migration completed")
}

// Migrate runs the schema migration on the given connection. Split out
// so tests and the data-migration script can reuse it against SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Agent{},
		&models.Integration{},
		&models.Trigger{},
		&models.Chain{},
		&models.ChainStep{},
		&models.Document{},
		&models.KBCategory{},
		&models.KBArticle{},
		&models.AgentLog{},
		&models.SystemSetting{},
	)
}

func SyncConfig(cfg *config.Config) {
	settings := []struct {
		Key   string
		Value *string
	}{
		{"KOMMO_BASE_DOMAIN", &cfg.KommoBaseDomain},
		{"KOMMO_ACCESS_TOKEN", &cfg.KommoAccessToken},
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"UPLOADS_DIR", &cfg.UploadsDir},
	}

	for _, s := range settings {
		var setting models.SystemSetting
		if err := GormDB.Where("key = ?", s.Key).First(&setting).Error; err == nil {
			// Found in DB, update memory config
			if setting.Value != "" {
				*s.Value = setting.Value
			}
		} else {
			// Not found in DB, save current config to DB
			if *s.Value != "" {
				GormDB.Create(&models.SystemSetting{
					Key:   s.Key,
					Value: *s.Value,
				})
			}
		}
	}
	log.Println("System settings synchronized from database")
}
