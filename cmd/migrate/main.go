package main

import (
	"log"

	"github.com/dagapurva3/senior-care-incidents/internal/config"
	"github.com/dagapurva3/senior-care-incidents/internal/db"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if !dotenv {
		log.Println("No .env file found, using system environment variables")
	}

	conn, err := db.Connect(cfg.DSN(), false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(conn)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(conn); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("✅ Database migrations completed successfully!")
}
