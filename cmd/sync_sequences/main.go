package main

import (
	"log"

	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/database"
)

// Resets the identity sequences after cmd/migrate_data copied rows with
// their original ids. Without this the next insert collides.
func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB

	tables := []string{
		"agents",
		"integrations",
		"triggers",
		"chains",
		"chain_steps",
		"documents",
		"kb_categories",
		"kb_articles",
		"agent_logs",
	}

	log.Println("Syncing PostgreSQL sequences...")

	for _, table := range tables {
		query := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), coalesce(max(id), 0) + 1, false) FROM " + table
		if err := db.Exec(query).Error; err != nil {
			log.Printf("Error syncing sequence for %s: %v", table, err)
		} else {
			log.Printf("Successfully synced sequence for %s", table)
		}
	}

	log.Println("DONE!")
}
