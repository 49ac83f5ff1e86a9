package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/smberp/backend/internal/infrastructure/config"
	"github.com/smberp/backend/internal/infrastructure/logger"
	"github.com/smberp/backend/internal/infrastructure/migration"
)

const usage = `Usage: migrate <command> [arguments]

Commands:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  steps <n>          Apply n migrations (negative rolls back)
  version            Print the current migration version
  force <version>    Force the version without running migrations
  create <name>      Create a new migration file pair

Flags:
  -path              Migrations directory (default "migrations")
`

func main() {
	path := flag.String("path", "migrations", "migrations directory")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.NewForEnvironment("development")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	command := args[0]

	// create works without a database connection
	if command == "create" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "create requires a migration name")
			os.Exit(2)
		}
		file, err := migration.CreateMigration(*path, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		fmt.Println(file.UpPath)
		fmt.Println(file.DownPath)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), *path, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "steps requires a count")
			os.Exit(2)
		}
		var n int
		n, err = strconv.Atoi(args[1])
		if err == nil {
			err = migrator.Steps(n)
		}
	case "version":
		var v uint
		var dirty bool
		v, dirty, err = migrator.Version()
		if err == nil {
			fmt.Printf("version: %d dirty: %v\n", v, dirty)
		}
	case "force":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "force requires a version")
			os.Exit(2)
		}
		var v int
		v, err = strconv.Atoi(args[1])
		if err == nil {
			err = migrator.Force(v)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}
