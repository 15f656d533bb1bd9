// Command migrate manages the ledger schema. By default it applies the
// migrations embedded in the binary; -path points it at a directory instead.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/migration"
	"github.com/erp/ledgercore/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("usage")

// schemaCommand runs against a connected Migrator
type schemaCommand func(m *migration.Migrator, args []string) error

// fileCommand works on a migrations directory without a database
type fileCommand func(log *zap.Logger, dir string, args []string) error

var schemaCommands = map[string]schemaCommand{
	"up":   func(m *migration.Migrator, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: version required", errUsage)
		}
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, args[0])
		}
		return m.GoTo(uint(version))
	},
	"version": func(m *migration.Migrator, _ []string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	},
	"force": func(m *migration.Migrator, args []string) error {
		version, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(version)
	},
}

var fileCommands = map[string]fileCommand{
	"create": func(log *zap.Logger, dir string, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: migration name required", errUsage)
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(dir, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	},
	"list": func(_ *zap.Logger, dir string, _ []string) error {
		names, err := migration.ListMigrations(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func main() {
	var (
		dir      string
		logLevel string
		confirm  bool
	)
	flag.StringVar(&dir, "path", "", "Migrations directory (default: embedded schema)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&confirm, "confirm", false, "Confirm the drop command")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, rest := args[0], args[1:]

	log := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"}, "development")
	defer func() {
		_ = log.Sync()
	}()

	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
		dir = abs
	}

	if cmd, ok := fileCommands[name]; ok {
		if dir == "" {
			dir = defaultMigrationsDir
		}
		exit(log, name, cmd(log, dir, rest))
		return
	}

	cmd, ok := schemaCommands[name]
	if name == "drop" {
		if !confirm {
			log.Fatal("Drop removes every database object; rerun with -confirm")
		}
		cmd, ok = func(m *migration.Migrator, _ []string) error { return m.Drop() }, true
	}
	if !ok {
		log.Error("Unknown command", zap.String("command", name))
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if dir == "" {
		m, err = migration.NewFromFS(db, migrations.FS, log)
	} else {
		m, err = migration.New(db, dir, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	log.Info("Running migration command", zap.String("command", name), zap.String("source", sourceName(dir)))
	exit(log, name, cmd(m, rest))
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, args[0])
	}
	return n, nil
}

func sourceName(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func exit(log *zap.Logger, name string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, errUsage) {
		log.Error("Invalid arguments", zap.String("command", name), zap.Error(err))
		printUsage()
		os.Exit(2)
	}
	log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Print the applied version
  force <version>       Set the version without running migrations
  drop                  Drop every database object (needs -confirm)
  create <name> [desc]  Write a new migration file pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: embedded schema)
  -log-level string     debug, info, warn or error (default: info)
  -confirm              Confirm drop

The database is read from ERP_DATABASE_HOST, ERP_DATABASE_PORT, ERP_DATABASE_USER,
ERP_DATABASE_PASSWORD, ERP_DATABASE_DBNAME and ERP_DATABASE_SSLMODE.
`)
}
