package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/pointplay/internal/catalog"
)

const migrateUsage = "usage: pointplay migrate up|down|version -db PATH"

// runMigrate handles the 'migrate' subcommand.
func runMigrate(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New(migrateUsage)
	}
	action := args[0]

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "pointplay.db", "Catalog database")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	store, err := catalog.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q; %s", action, migrateUsage)
	}

	v, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d (dirty=%v)\n", v, dirty)
	return nil
}
