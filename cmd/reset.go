package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/treedex/internal/checkpoint"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all checkpoint keys (abandons the run in progress)",
	Long: `Reset is the operator escape hatch: it clears the persisted traversal
state so the next run starts from scratch. Rows already written to the
sheet are left alone until that next run reinitializes the header.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		kv, err := checkpoint.NewSQLiteKV(db)
		if err != nil {
			return err
		}
		if err := checkpoint.NewManager(kv, nil, nil).Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Checkpoint cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
