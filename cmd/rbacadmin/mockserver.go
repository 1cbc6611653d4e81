package main

import (
	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/server"
)

var (
	mockPort int
	mockHost string
	mockSeed string
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local json-server compatible store",
	Long: `Run a local REST store serving /users, /roles and /permissions, backed by
SQLite (in memory by default) or Postgres. Intended for development and tests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mock := app.cfg.Mock
		if cmd.Flags().Changed("port") {
			mock.Port = mockPort
		}
		return server.RunWithSignalHandling(server.Config{
			Mock:     mock,
			Host:     mockHost,
			Version:  Version,
			SeedFile: mockSeed,
		})
	},
}

func init() {
	mockServerCmd.Flags().IntVarP(&mockPort, "port", "p", 0, "Port to listen on (overrides mock.port)")
	mockServerCmd.Flags().StringVar(&mockHost, "host", "", "Interface to bind (default all)")
	mockServerCmd.Flags().StringVar(&mockSeed, "seed", "", "Snapshot file to load into an empty store")
}
