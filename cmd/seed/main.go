package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dagapurva3/senior-care-incidents/internal/config"
	"github.com/dagapurva3/senior-care-incidents/internal/db"
	"github.com/dagapurva3/senior-care-incidents/internal/services"
	"github.com/dagapurva3/senior-care-incidents/internal/validation"
)

// IncidentData represents one incident in the seed file
type IncidentData struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// JSONData represents the structure of the seed file
type JSONData struct {
	Incidents []IncidentData `json:"incidents"`
}

func main() {
	owner := flag.String("owner", "dev-user", "owner id the sample incidents are filed under")
	file := flag.String("file", "data/sample-incidents.json", "seed file")
	flag.Parse()

	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if !dotenv {
		log.Println("No .env file found, using system environment variables")
	}
	if cfg.StoreDriver == "memory" {
		log.Fatal("Seeding needs STORE_DRIVER=postgres; the memory store does not outlive this process")
	}

	recordStore, closeStore, err := db.OpenStore(cfg, true)
	if err != nil {
		log.Fatalf("Failed to open incident store: %v", err)
	}
	defer db.CloseStore(closeStore)

	service := services.NewIncidentService(recordStore, services.DisabledSummarizer{}, services.IncidentServiceOptions{})

	log.Println("Seeding database with sample incidents...")
	created, err := seedIncidents(context.Background(), service, *owner, *file)
	if err != nil {
		db.CloseStore(closeStore)
		log.Fatalf("Error seeding incidents: %v", err)
	}

	log.Printf("✅ Seeded %d incidents for owner %s", created, *owner)
}

func seedIncidents(ctx context.Context, service *services.IncidentService, ownerID, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var jsonData JSONData
	if err := json.Unmarshal(raw, &jsonData); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, data := range jsonData.Incidents {
		input := validation.CreateInput{Type: data.Type, Description: data.Description}
		if data.Status != "" {
			input.Status = data.Status
		}
		incident, err := service.Create(ctx, ownerID, input)
		if err != nil {
			log.Printf("Error creating %s incident: %v", data.Type, err)
			continue
		}
		log.Printf("✅ Created incident %s (%s, %s)", incident.ID, incident.Type, incident.Status)
		created++
	}
	return created, nil
}
