package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/smarttransit/schoolbus-scheduler/internal/config"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
)

func main() {
	var (
		dbURLFlag string
		reset     bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&reset, "reset", false, "truncate every table after migrating (identities are reset)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("Connected to database. Applying schema...")
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	fmt.Println("Schema is up to date.")

	if !reset {
		return
	}

	if err := database.Truncate(ctx, db); err != nil {
		log.Fatal(err)
	}
	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	counts, err := database.RowCounts(ctx, db)
	if err != nil {
		log.Fatal(err)
	}
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		fmt.Printf("  %s: %d\n", t, counts[t])
	}
}
