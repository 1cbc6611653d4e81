package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/filter"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/view"
)

var permissionsCmd = &cobra.Command{
	Use:     "permissions",
	Aliases: []string{"permission", "perms"},
	Short:   "Manage permissions",
}

var (
	permListSearch  string
	permListPattern string
	permListOutput  string
)

var permissionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List permissions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if permListPattern != "" && !filter.ValidPattern(permListPattern) {
			return fmt.Errorf("invalid pattern %q", permListPattern)
		}
		m := newPermissions()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		perms := m.Filter(filter.Criteria{Search: permListSearch, Pattern: permListPattern})
		if permListOutput != "table" {
			return printStructured(cmd.OutOrStdout(), perms, permListOutput)
		}
		return view.Permissions(cmd.OutOrStdout(), perms)
	},
}

var permName string

var permissionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a permission",
	Long:  `Create a permission. Names are letters only, e.g. Read or Write.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newPermissions()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		m.OpenCreate()
		m.EditDraft(func(p *models.Permission) { p.Name = permName })
		created, err := m.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", created.ID)
		return nil
	},
}

var permissionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename a permission",
	Long: `Rename a permission. Roles reference permissions by name, so roles granting
the old name keep it until they are edited.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m := newPermissions()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		perm, ok := m.Find(id)
		if !ok {
			return fmt.Errorf("permission %s not found", id)
		}
		m.OpenEdit(perm)
		m.EditDraft(func(p *models.Permission) { p.Name = permName })
		_, err = m.Submit(cmd.Context())
		return err
	},
}

var permDeleteYes bool

var permissionsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a permission",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m := newPermissions()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		label := id.String()
		if p, ok := m.Find(id); ok {
			label = fmt.Sprintf("%q", p.Name)
		}
		return confirmOrYes(cmd, m.Manager, id, label, permDeleteYes)
	},
}

func init() {
	permissionsListCmd.Flags().StringVar(&permListSearch, "search", "", "Case-insensitive substring of the name")
	permissionsListCmd.Flags().StringVar(&permListPattern, "pattern", "", "Glob matched against the name")
	permissionsListCmd.Flags().StringVarP(&permListOutput, "output", "o", "table", "Output format: table, json or yaml")

	permissionsCreateCmd.Flags().StringVar(&permName, "name", "", "Permission name")
	permissionsUpdateCmd.Flags().StringVar(&permName, "name", "", "New permission name")
	permissionsUpdateCmd.MarkFlagRequired("name")

	permissionsDeleteCmd.Flags().BoolVarP(&permDeleteYes, "yes", "y", false, "Delete without asking")

	permissionsCmd.AddCommand(permissionsListCmd)
	permissionsCmd.AddCommand(permissionsCreateCmd)
	permissionsCmd.AddCommand(permissionsUpdateCmd)
	permissionsCmd.AddCommand(permissionsDeleteCmd)
}
