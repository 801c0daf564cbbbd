package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/mycrew-backend/pkg/config"
	"github.com/angelmondragon/mycrew-backend/pkg/db"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/migrate"
)

const usage = `usage: migrate [flags] <command>

commands touching the database (read the embedded SQL unless -dir is set):
  up | down | status | reset   goose command of the same name
  current                      print the schema version
  to <YYYYMMDDHHMMSS>          move up or down to a version

commands touching the source tree (-dir defaults to ` + migrate.SourceDir + `):
  create <name>                write an empty migration
  validate                     check file names and goose markers
`

func main() {
	dir := flag.String("dir", "", "migrations directory")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command, args := flag.Arg(0), flag.Args()[1:]
	_ = godotenv.Load()

	switch command {
	case "create", "validate":
		source := *dir
		if source == "" {
			source = migrate.SourceDir
		}
		if err := runSourceCommand(command, source, args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	source := *dir
	if source == "" {
		source = migrate.Embedded
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"driver":  cfg.DB.Driver,
		"command": command,
		"source":  source,
	})

	if err := runDBCommand(ctx, cfg, logg, command, source, args); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

func runSourceCommand(command, dir string, args []string) error {
	if command == "validate" {
		if err := migrate.ValidateDir(dir); err != nil {
			return err
		}
		fmt.Println("migrations valid:", dir)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("create needs a migration name")
	}
	path, err := migrate.CreateSQLMigration(dir, args[0])
	if err != nil {
		return err
	}
	fmt.Println("created", path)
	return nil
}

func runDBCommand(ctx context.Context, cfg *config.Config, logg *logger.Logger, command, source string, args []string) error {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	switch command {
	case "up", "down", "status", "reset":
		return migrate.Run(ctx, sqlDB, cfg.DB.Driver, source, command)
	case "current":
		v, err := migrate.Current(sqlDB, cfg.DB.Driver)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	case "to":
		if len(args) == 0 {
			return fmt.Errorf("to needs a target version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, cfg.DB.Driver, source, args[0])
	}
	return fmt.Errorf("unknown command %q", command)
}
