package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/config"
	"github.com/nebari-dev/rbacadmin/internal/db"
	"github.com/nebari-dev/rbacadmin/internal/rbac"
	"github.com/nebari-dev/rbacadmin/internal/snapshot"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Evaluate the access policy held by the store",
}

var policyCheckCmd = &cobra.Command{
	Use:   "check <user> [permission]",
	Short: "Check what a user may do",
	Long: `Check whether a user holds a permission through their role. Without a
permission, list every permission the user holds. The user is matched by id, then
by name. Inactive users hold nothing.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := fetchSnapshot(cmd)
		if err != nil {
			return err
		}
		en, err := rbac.NewEnforcer(snap.Data())
		if err != nil {
			return err
		}
		user, ok := en.FindUser(args[0])
		if !ok {
			return fmt.Errorf("user %q not found", args[0])
		}
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			perms, err := en.PermissionsFor(user)
			if err != nil {
				return err
			}
			if len(perms) == 0 {
				fmt.Fprintf(out, "%s holds no permissions\n", user.Name)
				return nil
			}
			fmt.Fprintln(out, strings.Join(perms, "\n"))
			return nil
		}
		allowed, err := en.Can(user, args[1])
		if err != nil {
			return err
		}
		if !allowed {
			return fmt.Errorf("%s may not %s", user.Name, args[1])
		}
		fmt.Fprintf(out, "%s may %s\n", user.Name, args[1])
		return nil
	},
}

var policyLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report dangling role and permission names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := fetchSnapshot(cmd)
		if err != nil {
			return err
		}
		issues := rbac.Lint(snap.Data())
		for _, i := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), i)
		}
		if len(issues) > 0 {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No issues found.")
		return nil
	},
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the policy as casbin rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := fetchSnapshot(cmd)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rbac.Describe(snap.Data()))
		return nil
	},
}

var (
	policySyncDriver string
	policySyncDSN    string
)

var policySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the policy to a casbin rule table",
	Long: `Write the policy to the casbin_rule table of a SQL database, replacing what
is there, so services using the casbin gorm adapter pick it up.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := fetchSnapshot(cmd)
		if err != nil {
			return err
		}
		dbCfg := config.DatabaseConfig{Driver: app.cfg.Policy.Driver, DSN: app.cfg.Policy.DSN}
		if policySyncDriver != "" {
			dbCfg.Driver = policySyncDriver
		}
		if policySyncDSN != "" {
			dbCfg.DSN = policySyncDSN
		}
		database, err := db.New(dbCfg)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}
		n, err := rbac.Sync(cmd.Context(), database, snap.Data(), app.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rules\n", n)
		return nil
	},
}

func fetchSnapshot(cmd *cobra.Command) (snapshot.Snapshot, error) {
	return snapshot.Fetch(cmd.Context(), snapshot.Source{
		Users:       app.client.Users(),
		Roles:       app.client.Roles(),
		Permissions: app.client.Permissions(),
	})
}

func init() {
	policySyncCmd.Flags().StringVar(&policySyncDriver, "driver", "", "Database driver: sqlite or postgres (overrides policy.driver)")
	policySyncCmd.Flags().StringVar(&policySyncDSN, "dsn", "", "Database DSN (overrides policy.dsn)")

	policyCmd.AddCommand(policyCheckCmd)
	policyCmd.AddCommand(policyLintCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policySyncCmd)
}
