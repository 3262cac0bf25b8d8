package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskstore/cmd/api/commands"
)

// @title TaskStore API
// @version 1.0
// @description Task list persistence server

// @host localhost:4096
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskstore",
		Short: "TaskStore API Server",
		Long:  `TaskStore keeps a client's whole task list in a single JSON file and serves it back over HTTP.`,
	}

	rootCmd.PersistentFlags().String("data-file", "", "Path of the task store file (overrides STORE_DATA_FILE)")

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
