package main

import (
	"log"

	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/database"

	"gorm.io/gorm"
)

// One-shot cleanup for rows left behind by deletes that predate the
// cascading delete paths: steps without a chain, triggers/chains/
// documents without an agent, logs without an agent.
func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB

	log.Println("Cleaning up orphaned rows...")

	cleanups := []struct {
		name  string
		query string
	}{
		{"chain_steps without chain", "DELETE FROM chain_steps WHERE chain_id NOT IN (SELECT id FROM chains)"},
		{"chains without agent", "DELETE FROM chains WHERE agent_id NOT IN (SELECT id FROM agents)"},
		{"triggers without agent", "DELETE FROM triggers WHERE agent_id NOT IN (SELECT id FROM agents)"},
		{"documents without agent", "DELETE FROM documents WHERE agent_id NOT IN (SELECT id FROM agents)"},
		{"kb_articles without category", "DELETE FROM kb_articles WHERE category_id != 0 AND category_id NOT IN (SELECT id FROM kb_categories)"},
		{"agent_logs without agent", "DELETE FROM agent_logs WHERE agent_id != 0 AND agent_id NOT IN (SELECT id FROM agents)"},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, c := range cleanups {
			result := tx.Exec(c.query)
			if result.Error != nil {
				return result.Error
			}
			log.Printf("Deleted %d %s", result.RowsAffected, c.name)
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Cleanup failed, nothing deleted: %v", err)
	}

	log.Println("Done!")
}
