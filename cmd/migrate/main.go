// Command migrate manages the Postgres schema.
//
//	migrate [-dir path] up | down | status | to <version> | create <name> | validate
//
// Without -dir the migrations compiled into the binary are used; create
// always writes to a directory and defaults to pkg/migrate/migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/logger"
	"github.com/sherryseats/orders-backend/pkg/migrate"
)

func main() {
	dir := flag.String("dir", "", "migrations directory (default: embedded)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-dir path] up|down|status|to <version>|create <name>|validate")
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := logg.WithFields(context.Background(), map[string]any{"command": args[0], "dir": *dir})

	if err := run(ctx, logg, *dir, args); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, dir string, args []string) error {
	switch args[0] {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("create needs a migration name")
		}
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, args[1])
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "path", path), "migration created")
		return nil
	case "validate":
		files, err := migrate.Files(dir)
		if err != nil {
			return err
		}
		if err := migrate.ValidateFS(files); err != nil {
			return err
		}
		logg.Info(ctx, "migrations valid")
		return nil
	}

	m, closeDB, err := open(ctx, logg, dir)
	if err != nil {
		return err
	}
	defer closeDB()

	switch args[0] {
	case "up":
		applied, err := m.Up(ctx)
		logg.Info(logg.WithField(ctx, "applied", applied), "migrate up finished")
		return err
	case "down":
		return m.Down(ctx)
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("to needs a target version")
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad version %q: %w", args[1], err)
		}
		return m.To(ctx, version)
	case "status":
		rows, err := m.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, r := range rows {
			state, at := "pending", "-"
			if r.Applied {
				state, at = "applied", r.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Version, state, at, r.Name)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func open(ctx context.Context, logg *logger.Logger, dir string) (*migrate.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	files, err := migrate.Files(dir)
	if err != nil {
		return nil, nil, err
	}
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "close database", err)
		}
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	m, err := migrate.NewMigrator(sqlDB, files)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return m, closeDB, nil
}
