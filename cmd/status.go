package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/treedex/internal/checkpoint"
	"github.com/agentic-research/treedex/internal/sheet"
	"github.com/agentic-research/treedex/internal/traverse"
)

var queryExpr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current checkpoint and sheet state",
	Long: `Status is a read-only dump of the run in progress: queue length,
processed folder count, depth watermark and last activity, plus the sheet
extents. --query applies a JSONPath expression to the raw checkpoint
blob, e.g. '$.queue[0].folderId' or '$.processedFolders[-1]'.`,
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

		ctx := cmd.Context()
		mgr := checkpoint.NewManager(kv, nil, nil)
		raw, found, err := mgr.Dump(ctx)
		if err != nil {
			return err
		}

		if !found {
			fmt.Println("State:", color.New(color.FgHiBlack).Sprint("no run in progress"))
			return printExtent(cmd, sink)
		}

		if queryExpr != "" {
			return printQuery(raw, queryExpr)
		}

		st, err := traverse.DecodeState([]byte(raw))
		if err != nil {
			fmt.Println("State:", color.New(color.FgRed).Sprint("corrupt checkpoint"))
			fmt.Println(raw)
			return err
		}

		fmt.Println("State:", color.New(color.FgGreen).Sprint("in progress"))
		fmt.Println("Run ID:          ", st.RunID)
		fmt.Println("Queued folders:  ", humanize.Comma(int64(len(st.Queue))))
		fmt.Println("Processed:       ", humanize.Comma(int64(len(st.ProcessedFolders))))
		fmt.Println("Depth watermark: ", st.MaxDepthFound)
		if !st.LastProcessedTime.IsZero() {
			fmt.Println("Last activity:   ", humanize.Time(st.LastProcessedTime))
		}
		return printExtent(cmd, sink)
	},
}

// printQuery applies a JSONPath to the raw checkpoint blob.
func printQuery(raw, expr string) error {
	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("invalid jsonpath %q: %w", expr, err)
	}
	data, err := oj.ParseString(raw)
	if err != nil {
		return fmt.Errorf("parse checkpoint blob: %w", err)
	}
	for _, result := range x.Get(data) {
		fmt.Println(oj.JSON(result))
	}
	return nil
}

func printExtent(cmd *cobra.Command, sink *sheet.SQLiteSink) error {
	rows, cols, err := sink.Extent(cmd.Context())
	if err != nil {
		return err
	}
	dataRows := rows
	if dataRows > 0 {
		dataRows-- // header
	}
	fmt.Printf("Sheet:            %s rows x %d columns\n", humanize.Comma(int64(dataRows)), cols)
	return nil
}

func init() {
	statusCmd.Flags().StringVarP(&queryExpr, "query", "q", "", "JSONPath over the raw checkpoint blob")
	rootCmd.AddCommand(statusCmd)
}
