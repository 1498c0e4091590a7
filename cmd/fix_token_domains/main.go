package main

import (
	"log"
	"strings"

	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"
)

// Earlier versions stored whatever the OAuth callback sent as the
// account domain: sometimes a full URL, sometimes with a trailing
// slash, and for migrated accounts the legacy amocrm.ru spelling of a
// kommo.com domain. The API client builds URLs from this column, so
// every row has to be a bare hostname.
func normalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimSuffix(d, "/")
	d = strings.ToLower(d)

	if account, found := strings.CutSuffix(d, ".amocrm.ru"); found {
		d = account + ".kommo.com"
	}
	return d
}

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB

	var integrations []models.Integration
	if err := db.Find(&integrations).Error; err != nil {
		log.Fatalf("Error fetching integrations: %v", err)
	}

	log.Printf("Checking %d integrations...", len(integrations))

	fixed := 0
	for _, integration := range integrations {
		normalized := normalizeDomain(integration.BaseDomain)
		if normalized == integration.BaseDomain {
			continue
		}

		log.Printf("Fixing integration %d: %q -> %q", integration.ID, integration.BaseDomain, normalized)
		if err := db.Model(&integration).Update("base_domain", normalized).Error; err != nil {
			log.Printf("Error updating integration %d: %v", integration.ID, err)
			continue
		}
		fixed++
	}

	log.Printf("Done! Fixed %d integrations", fixed)
}
