// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tender-watch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tender-watch", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
