package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rbacadmin",
	Short: "rbacadmin - manage users, roles and permissions in an RBAC store",
	Long: `rbacadmin manages the users, roles and permissions held by a REST store
(json-server compatible) and checks the resulting access policy.`,
	Example: `  # Start a local store and add a permission
  rbacadmin mock-server --port 3001 &
  rbacadmin permissions create --name Read

  # Grant it to a role and assign the role
  rbacadmin roles create --name Viewer --permission Read
  rbacadmin users create --name Anna --email anna@example.com --role Viewer

  # Check the result
  rbacadmin policy check Anna Read`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "manage", Title: "Management Commands:"},
		&cobra.Group{ID: "policy", Title: "Policy Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "Config file (default ./config.yaml)")
	pf.StringVar(&globalFlags.apiURL, "api-url", "", "Store base URL (overrides api.base_url)")
	pf.StringVar(&globalFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&globalFlags.logFormat, "log-format", "", "Log format: text or json")

	usersCmd.GroupID = "manage"
	rolesCmd.GroupID = "manage"
	permissionsCmd.GroupID = "manage"

	policyCmd.GroupID = "policy"

	exportCmd.GroupID = "admin"
	importCmd.GroupID = "admin"
	mockServerCmd.GroupID = "admin"

	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(permissionsCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	teardown()
	if err != nil {
		os.Exit(1)
	}
}
