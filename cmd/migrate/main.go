package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/database"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/logging"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if *rollback {
		name, err := database.RollbackLast(ctx, db, *dir)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"), "text")
	applied, err := database.ApplyMigrations(ctx, db, *dir, logger)
	if err != nil {
		log.Fatal(err)
	}
	if len(applied) == 0 {
		fmt.Println("Database is up to date.")
		return
	}
	fmt.Printf("Applied %d migration(s).\n", len(applied))
}
