package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version int64
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|to|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.name, "name", "", "name of the migration to create")
	flag.Int64Var(&opts.version, "version", 0, "target version for -cmd=to")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func (o options) source() fs.FS {
	if o.dir == "" {
		return migrate.Migrations()
	}
	return os.DirFS(o.dir)
}

func run(opts options) error {
	switch opts.cmd {
	case "create":
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.NewFile(dir, opts.name, time.Now())
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.Validate(opts.source()); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": opts.cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if dbClient.Driver() == config.DriverSQLite {
		if opts.cmd != "up" {
			return fmt.Errorf("sqlite databases only support up")
		}
		return migrate.ApplySQLiteSchema(ctx, dbClient.DB())
	}

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, opts.source(), logg)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "to":
		if opts.version <= 0 {
			return errors.New("-version is required")
		}
		return runner.To(ctx, opts.version)
	case "status":
		states, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range states {
			applied := "pending"
			if st.Applied {
				applied = st.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%d  %-40s %s\n", st.Version, st.File, applied)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}
}
