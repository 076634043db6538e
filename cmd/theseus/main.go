// Package main provides the theseus CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/theseus/cli"
)

var (
	// Global flags
	provider  string
	maxTurns  int
	workspace string
	verbose   bool
	jsonOut   bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "theseus",
		Short: "An LLM agent that works a task to completion with tools",
		Long: `A CLI tool for running an LLM agent loop against a workspace.

The agent alternates between model calls and tool execution (shell, file
read/write/edit, directory listing, text search, web) until the model
stops requesting tools or the turn budget runs out. Progress streams as
typed events.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxTurns, "max-turns", "m", 0, "Maximum turns for the agent loop (0 = config default)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: fresh directory per task)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit events as JSON lines")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [task]",
		Short: "Execute a task with the agent loop",
		Long: `Execute a task with the agent loop.

The agent gets a standard tool set (execute_shell, read_file, write_file,
edit_file, list_dir, search_text, web_search, web_fetch) rooted at the
workspace directory, and runs until done or the turn budget is exhausted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:  provider,
				MaxTurns:  maxTurns,
				Workspace: workspace,
				Verbose:   verbose,
				JSON:      jsonOut,
			}
			return cli.RunTask(context.Background(), args[0], opts)
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verboseTools)
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
