package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dan-strohschein/websql-driver/client"
	"github.com/dan-strohschein/websql-driver/mapper"
)

func newExecCmd() *cobra.Command {
	var noFail bool

	cmd := &cobra.Command{
		Use:   "exec [sql]...",
		Short: "Execute SQL in one atomic batch",
		Long: `Execute one or more SQL strings as a single atomic batch.

Each argument is one sub-request. Strings starting with SELECT (case
insensitive) are sent as queries; everything else is sent as a statement.
Query results are rendered as tables, statement results as update counts.
`,
		Example: `  websql exec "SELECT * FROM TEMP"
  websql exec "INSERT INTO TEMP (ID) VALUES (1)" "SELECT * FROM TEMP"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}

			c, err := client.NewClient(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			builder := client.NewRequestBuilder()
			for _, sql := range args {
				if isQuery(sql) {
					builder.AddQuery(sql)
				} else {
					builder.AddStatement(sql)
					if noFail {
						builder.WithNoFail()
					}
				}
			}
			req, err := builder.Build()
			if err != nil {
				return err
			}

			resp, err := c.Send(context.Background(), req)
			if err != nil {
				return err
			}

			for i, item := range resp.Results {
				renderItem(cmd, i, item)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noFail, "no-fail", false, "mark every statement noFail so one failure does not abort the batch")

	return cmd
}

func isQuery(sql string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT")
}

func renderItem(cmd *cobra.Command, idx int, item mapper.Item) {
	out := cmd.OutOrStdout()

	if !item.Success {
		fmt.Fprintf(out, "%s [%d] %s\n", color.RedString("✗"), idx, item.Err)
		return
	}

	switch {
	case item.ResultSet != nil:
		fmt.Fprintf(out, "%s [%d] %d row(s)\n", color.GreenString("✓"), idx, len(item.ResultSet))
		renderResultSet(cmd, item.ResultSet)
	case item.RowsUpdatedBatch != nil:
		fmt.Fprintf(out, "%s [%d] batch updated rows: %v\n", color.GreenString("✓"), idx, item.RowsUpdatedBatch)
	case item.RowsUpdated != nil:
		fmt.Fprintf(out, "%s [%d] updated rows: %d\n", color.GreenString("✓"), idx, *item.RowsUpdated)
	default:
		fmt.Fprintf(out, "%s [%d] ok\n", color.GreenString("✓"), idx)
	}
}

func renderResultSet(cmd *cobra.Command, rows []mapper.Row) {
	if len(rows) == 0 {
		return
	}

	// Column order is not defined on the wire; sort names for stable output.
	cols := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(cols)
	for _, row := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = row.GetString(col)
		}
		table.Append(values)
	}
	table.Render()
}
