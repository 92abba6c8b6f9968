// Command dbtool prepares the databases used by the planner.
//
// Usage:
//
//	dbtool [up|down|status]
//
// A Postgres DATABASE_URL (or CACHE_DSN) is migrated with the embedded goose
// migrations. A SQLite CACHE_DSN gets the local schema applied and ignores
// the command.
package main

import (
	"context"
	"database/sql"
	"excursion-route-planner/internal/config"
	"excursion-route-planner/internal/platform/db"
	"excursion-route-planner/migrations"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	dsn := config.Get("DATABASE_URL", config.Get("CACHE_DSN", ""))
	if dsn == "" {
		log.Fatal("DATABASE_URL or CACHE_DSN is required")
	}

	if !db.IsPostgres(dsn) {
		conn, err := db.OpenSqlite(dsn)
		if err != nil {
			log.Fatal(err)
		}
		conn.Close()
		log.Printf("SQLite schema ready at %s", dsn)
		return
	}

	conn, err := db.Open(dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := migrate(context.Background(), conn, command); err != nil {
		log.Fatal(err)
	}
}

func migrate(ctx context.Context, conn *sql.DB, command string) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate: create goose provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		for _, r := range results {
			log.Printf("applied %s in %s", r.Source.Path, r.Duration)
		}
		log.Printf("Schema ready (%d migrations applied).", len(results))
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		log.Printf("rolled back %s", r.Source.Path)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			log.Printf("%-8s %s", s.State, s.Source.Path)
		}
	default:
		return fmt.Errorf("migrate: unknown command %q", command)
	}

	return nil
}
