package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gamehub",
		Short: "CLI tool for the gamehub lobby server",
		Long: `gamehub is a CLI tool for interacting with the gamehub lobby over its
line-framed JSON TCP protocol.

It supports account registration, browsing and rating the game catalog,
room management, and the developer upload/delete operations.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = NewClient(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			client.Close()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Lobby TCP address (env: GAMEHUB_ADDR)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminURL, "admin-url", cfg.AdminURL, "Admin HTTP base URL (env: GAMEHUB_ADMIN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (env: GAMEHUB_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "password", "p", cfg.Password, "Password (env: GAMEHUB_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&cfg.Role, "role", cfg.Role, "Role: player or developer (env: GAMEHUB_ROLE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newDevCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
