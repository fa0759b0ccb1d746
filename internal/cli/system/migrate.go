package system

import (
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/migration"
)

// migrator is implemented by the SQL storage providers
type migrator interface {
	Migrator() (*migration.Runner, error)
}

func runnerFor(ctx *cli.Context) (*migration.Runner, error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil, fmt.Errorf("storage %T does not support migrations", ctx.Store)
	}
	return m.Migrator()
}

type MigrateCmd struct {
	Status bool `help:"Show the schema version and pending migrations without applying them."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}

	if c.Status {
		st, err := runner.Status()
		if err != nil {
			return err
		}
		fmt.Printf("Current schema version: %d\n", st.Current)
		fmt.Printf("Latest schema version:  %d\n", st.Latest)
		for _, m := range st.Pending {
			fmt.Printf("  pending: %03d_%s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
