package cmd

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/agentic-research/treedex/internal/checkpoint"
	"github.com/agentic-research/treedex/internal/runner"
	"github.com/agentic-research/treedex/internal/schedule"
	"github.com/agentic-research/treedex/internal/sheet"
	"github.com/agentic-research/treedex/internal/traverse"
	"github.com/agentic-research/treedex/internal/treestore"
)

var follow bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one traversal tick (or keep going with --follow)",
	Long: `Run resumes the checkpointed traversal, or starts a fresh one when no
checkpoint exists. Without --follow it performs a single tick and exits,
leaving the checkpoint behind for the next invocation; with --follow it
lets the scheduler chain ticks until the traversal completes.`,
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
		sink, err := sheet.NewSQLiteSink(db)
		if err != nil {
			return err
		}
		store := treestore.NewBillyStore(osfs.New(cfg.Root), cfg.RootName, cfg.LinkBase)

		ctx := cmd.Context()
		done := make(chan error, 1)
		var tick func()
		sched := schedule.NewTimer(func() { tick() })
		mgr := checkpoint.NewManager(kv, sched, func(ctx context.Context) error {
			return sink.SortRows(ctx)
		}).WithDelay(cfg.ResumeDelay)

		r := &runner.Runner{
			Engine:      traverse.New(store, cfg.Budget),
			Checkpoints: mgr,
			Sink:        sink,
			RootID:      treestore.RootID,
			Lock:        flock.New(cfg.LockFile),
		}

		tick = func() {
			action, err := r.Run(ctx)
			if err != nil {
				done <- err
				return
			}
			if action == checkpoint.ActionCompleted {
				fmt.Println("Traversal complete. Sheet sorted.")
				done <- nil
				return
			}
			if !follow {
				// Single-tick mode: drop the pending continuation and
				// leave the checkpoint for the next invocation.
				sched.Cancel()
				fmt.Println("Budget reached. Checkpoint saved; run again to continue.")
				done <- nil
				return
			}
			fmt.Println("Budget reached. Continuing...")
		}

		tick()
		return <-done
	},
}

func init() {
	runCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep rescheduling ticks until the traversal completes")
	rootCmd.AddCommand(runCmd)
}
