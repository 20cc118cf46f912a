package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/config"
	"github.com/procura/backend/internal/infrastructure/logger"
	"github.com/procura/backend/internal/infrastructure/migration"
	"github.com/procura/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const (
	defaultMigrationsPath = "migrations"
	adminPasswordEnv      = "PROCURA_ADMIN_PASSWORD"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: database.migrations_path)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = cfg.Database.MigrationsPath
	}
	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to get absolute path", zap.Error(err))
	}
	migrationsPath = absPath

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created successfully",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		entries, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(entries) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(entries)))
		for _, e := range entries {
			fmt.Printf("  - %06d %s\n", e.Version, e.Name)
		}
		return

	case "create-admin":
		if len(args) < 3 {
			log.Fatal("Usage: migrate create-admin <email> <name>")
		}
		createAdmin(cfg, log, args[1], args[2])
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	// Closing the migrator closes db
	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		_ = m.Close()
	}()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// createAdmin inserts the first admin account. The password comes from the
// environment so it never appears in shell history.
func createAdmin(cfg *config.Config, log *zap.Logger, email, name string) {
	password := os.Getenv(adminPasswordEnv)
	if password == "" {
		log.Fatal("Admin password required", zap.String("env", adminPasswordEnv))
	}

	user, err := identity.NewUser(name, email, password, identity.RoleAdmin, "")
	if err != nil {
		log.Fatal("Invalid admin account", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := persistence.NewGormUserRepository(db.DB).Create(ctx, user); err != nil {
		log.Fatal("Failed to create admin", zap.Error(err))
	}
	log.Info("Admin created", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
}

func printUsage() {
	fmt.Println(`Procura Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                         Apply all pending migrations
  down                       Roll back all migrations
  step <n>                   Apply n migrations (positive=up, negative=down)
  version                    Show current migration version
  force <version>            Force set migration version (use with caution)
  create <name> [desc]       Create a new migration file pair
  list                       List available migrations
  create-admin <email> <name>
                             Create an admin login (password from PROCURA_ADMIN_PASSWORD)

Flags:
  -path string               Path to migrations directory
  -log-level string          Log level (default: info)`)
}
