package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-strohschein/websql-driver/client"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "websql v%s\n", client.Version)
		},
	}
}
