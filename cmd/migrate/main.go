package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"authform/internal/adapters/sqlite"
	"authform/internal/config"
	"authform/internal/logger"
)

func main() {
	cfg := config.Load()

	cmd := flag.String("op", "", "operation: up, down, version, force")
	steps := flag.Int("steps", 0, "number of steps for up/down (0 = all), or the version for force")
	dbPath := flag.String("db", cfg.SQLitePath, "path to sqlite database file")
	flag.Parse()

	if *cmd == "" {
		fmt.Println("Usage: go run ./cmd/migrate -op=[up|down|version|force] -steps=[n] -db=[path]")
		os.Exit(1)
	}

	db, err := sqlite.NewSqliteDB(*dbPath, logger.New(cfg))
	if err != nil {
		log.Fatal(err)
	}

	m, err := sqlite.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch *cmd {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-(*steps))
		} else {
			err = m.Down()
		}
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", v, dirty)
		return
	case "force":
		if *steps == 0 {
			log.Fatal("please specify version to force")
		}
		err = m.Force(*steps)
	default:
		log.Fatal("unknown command")
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No changes detected.")
		} else {
			log.Fatalf("Migration failed: %v", err)
		}
	} else {
		fmt.Println("Migration success!")
	}
}
