package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// migrateCmd creates or upgrades every table the stores registered
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "migrate lever database tables",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate lever tables error:", err)
			return
		}

		cmd.Println("database migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
