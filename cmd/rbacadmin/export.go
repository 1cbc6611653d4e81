package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/snapshot"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every user, role and permission to a file",
	Long: `Write every user, role and permission to a file. The format follows the
file extension (.json, .yaml, .toml) unless --format is given. Without a file the
snapshot goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(args, exportFormat)
		if err != nil {
			return err
		}
		snap, err := fetchSnapshot(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return snapshot.Encode(cmd.OutOrStdout(), snap, format)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := snapshot.Encode(f, snap, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d users, %d roles, %d permissions to %s\n",
			len(snap.Users), len(snap.Roles), len(snap.Permissions), args[0])
		return nil
	},
}

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create the records of a snapshot that do not exist yet",
	Long: `Create the permissions, roles and users of a snapshot, in that order,
skipping names that already exist. Ids in the file are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(args, importFormat)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		snap, err := snapshot.Decode(f, format)
		if err != nil {
			return err
		}

		targets := snapshot.Targets{Users: newUsers(), Roles: newRoles(), Permissions: newPermissions()}
		defer targets.Users.Close()
		defer targets.Roles.Close()
		defer targets.Permissions.Close()

		res, err := snapshot.Apply(cmd.Context(), targets, snap, app.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Import: %s\n", res)
		if res.Failed > 0 {
			return fmt.Errorf("%d record(s) could not be imported", res.Failed)
		}
		return nil
	},
}

func resolveFormat(args []string, flag string) (snapshot.Format, error) {
	if flag != "" {
		return snapshot.ParseFormat(flag)
	}
	if len(args) == 0 {
		return snapshot.JSON, nil
	}
	return snapshot.FormatFromPath(args[0])
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json, yaml or toml")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "json, yaml or toml")
}
