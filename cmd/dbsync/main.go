// Command dbsync synchronizes the database schema with the models.
//
//	dbsync          create missing tables and indexes (alter-style sync)
//	dbsync -force   drop and recreate everything (destructive, dev only)
package main

import (
	"flag"
	"log"

	"backend/internal/config"
	"backend/internal/database"
)

func main() {
	force := flag.Bool("force", false, "drop all tables before recreating them (DESTRUCTIVE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if *force {
		log.Println("Force sync: dropping and recreating all tables")
	}

	if err := database.Migrate(db, *force); err != nil {
		log.Fatalf("Schema sync failed: %v", err)
	}

	log.Println("Database synchronized successfully.")
}
