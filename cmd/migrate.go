package cmd

import (
	"fmt"

	"betbot/database"
)

// Migrate dispatches the `betbot migrate` subcommands. args holds everything
// after the subcommand name.
func Migrate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: betbot migrate <up|down|status> [steps]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	}
	return fmt.Errorf("unknown migrate command %q", args[0])
}
