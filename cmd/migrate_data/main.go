package main

import (
	"log"

	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	// 1. Connect to SQLite (Source)
	sqliteDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	log.Printf("Connected to SQLite at %s", cfg.DBPath)

	// 2. Connect to PostgreSQL (Destination)
	database.InitGorm(cfg)
	pgDB := database.GormDB

	log.Println("Starting data migration...")

	migrateTable := func(tableName string, source interface{}) {
		log.Printf("Migrating table: %s", tableName)

		if err := sqliteDB.Find(source).Error; err != nil {
			log.Printf("Error reading %s from SQLite: %v", tableName, err)
			return
		}

		err := pgDB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(source).Error
		})

		if err != nil {
			log.Printf("Error writing %s to Postgres: %v", tableName, err)
		} else {
			log.Printf("Successfully migrated %s", tableName)
		}
	}

	// Migrate parents before children so foreign keys resolve.

	// 1. Agents
	var agents []models.Agent
	migrateTable("agents", &agents)

	// 2. Integrations
	var integrations []models.Integration
	migrateTable("integrations", &integrations)

	// 3. Triggers
	var triggers []models.Trigger
	migrateTable("triggers", &triggers)

	// 4. Chains
	var chains []models.Chain
	migrateTable("chains", &chains)

	// 5. Chain Steps
	var steps []models.ChainStep
	migrateTable("chain_steps", &steps)

	// 6. Documents
	var docs []models.Document
	migrateTable("documents", &docs)

	// 7. KB Categories
	var categories []models.KBCategory
	migrateTable("kb_categories", &categories)

	// 8. KB Articles
	var articles []models.KBArticle
	migrateTable("kb_articles", &articles)

	// 9. Agent Logs
	var logs []models.AgentLog
	migrateTable("agent_logs", &logs)

	log.Println("Migration completed!")
}
