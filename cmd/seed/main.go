package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/flowlens/flowlens/internal/adapter/persistence"
	"github.com/flowlens/flowlens/internal/adapter/source"
	"github.com/flowlens/flowlens/internal/config"
)

func main() {
	file := flag.String("file", "", "path to a JSON ticket fixture")
	project := flag.String("project", "", "project key to seed")
	flag.Parse()

	if *file == "" || *project == "" {
		log.Fatal("both -file and -project are required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := persistence.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	tickets, err := source.NewFileSource(*file).FetchTickets(ctx, *project)
	if err != nil {
		log.Fatalf("Failed to read tickets: %v", err)
	}

	store := persistence.NewPostgresTicketStore(db)
	if err := store.UpsertTickets(ctx, *project, tickets); err != nil {
		log.Fatalf("Failed to store tickets: %v", err)
	}
	if err := store.UpdateProjectMeta(ctx, *project, time.Now().UTC(), len(tickets)); err != nil {
		log.Fatalf("Failed to update project metadata: %v", err)
	}

	log.Printf("Seeded %d tickets for project %s", len(tickets), *project)
}
