package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/HarooHub/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	user := env.GetEnv("DB_USER", "haroohub")
	host := env.GetEnv("DB_HOST", "db")
	port := env.GetEnv("DB_PORT", "3306")
	name := env.GetEnv("DB_NAME", "haroohub_db")
	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		user, env.GetEnv("DB_PASSWORD", "haroohub"), host, port, name)

	log.Infof("[Migrate] Connecting to %s@%s:%s/%s", user, host, port, name)

	m, err := migrate.New(
		"file://"+env.GetEnv("MIGRATIONS_PATH", "migrations"),
		dbURL,
	)
	if err != nil {
		log.Fatalf("[Migrate] Could not initialize: %v", err)
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warnf("[Migrate] Could not close resources: %v, %v", sourceErr, dbErr)
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info("[Migrate] No change, the schema is up to date")
		case err != nil:
			log.Fatalf("[Migrate] Up failed: %v", err)
		default:
			log.Info("[Migrate] Migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("[Migrate] Rolling back the last migration failed: %v", err)
		}
		log.Info("[Migrate] Last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatal("[Migrate] goto needs a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("[Migrate] Invalid version: %v", err)
		}

		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Infof("[Migrate] No change, already at version %d", version)
		case err != nil:
			log.Fatalf("[Migrate] Migrating to version %d failed: %v", version, err)
		default:
			log.Infof("[Migrate] Migrated to version %d", version)
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Info("[Migrate] No migration has been applied yet")
		case err != nil:
			log.Fatalf("[Migrate] Could not read the version: %v", err)
		default:
			dirtyStatus := ""
			if dirty {
				dirtyStatus = " (dirty)"
			}
			log.Infof("[Migrate] Current version: %d%s", version, dirtyStatus)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current version")
}
