package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/filter"
	"github.com/nebari-dev/rbacadmin/internal/manager"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/view"
)

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Aliases: []string{"role"},
	Short:   "Manage roles and the permissions they grant",
}

var (
	roleListSearch  string
	roleListPattern string
	roleListOutput  string
)

var rolesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List roles",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if roleListPattern != "" && !filter.ValidPattern(roleListPattern) {
			return fmt.Errorf("invalid pattern %q", roleListPattern)
		}
		m := newRoles()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		roles := m.Filter(filter.Criteria{Search: roleListSearch, Pattern: roleListPattern})
		if roleListOutput != "table" {
			return printStructured(cmd.OutOrStdout(), roles, roleListOutput)
		}
		return view.Roles(cmd.OutOrStdout(), roles)
	},
}

var rolesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a role with every permission as a checkbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, role, err := loadRole(cmd, args[0])
		if err != nil {
			return err
		}
		defer m.Close()
		m.OpenEdit(role)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", role.Name, role.ID)
		return view.Checkboxes(cmd.OutOrStdout(), m.PermissionOptions())
	},
}

var (
	roleName        string
	rolePermissions []string
)

var rolesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newRoles()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		m.OpenCreate()
		m.EditDraft(func(r *models.Role) { r.Name = roleName })
		for _, p := range rolePermissions {
			m.SetPermission(p, true)
		}
		created, err := m.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", created.ID)
		return nil
	},
}

var rolesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename a role or replace its permissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, role, err := loadRole(cmd, args[0])
		if err != nil {
			return err
		}
		defer m.Close()
		m.OpenEdit(role)
		m.EditDraft(func(r *models.Role) {
			if cmd.Flags().Changed("name") {
				r.Name = roleName
			}
			if cmd.Flags().Changed("permission") {
				r.Permissions = append([]string{}, rolePermissions...)
			}
		})
		_, err = m.Submit(cmd.Context())
		return err
	},
}

var rolesGrantCmd = &cobra.Command{
	Use:   "grant <id> <permission>...",
	Short: "Check permissions on a role",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editGrants(cmd, args[0], args[1:], true)
	},
}

var rolesRevokeCmd = &cobra.Command{
	Use:   "revoke <id> <permission>...",
	Short: "Uncheck permissions on a role",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editGrants(cmd, args[0], args[1:], false)
	},
}

var roleDeleteYes bool

var rolesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a role",
	Long: `Delete a role. Users holding it keep the role name until they are edited;
'rbacadmin policy lint' lists them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, role, err := loadRole(cmd, args[0])
		if err != nil {
			return err
		}
		defer m.Close()
		return confirmOrYes(cmd, m.Manager, role.ID, fmt.Sprintf("%q", role.Name), roleDeleteYes)
	},
}

func loadRole(cmd *cobra.Command, arg string) (*manager.Roles, models.Role, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, models.Role{}, err
	}
	m := newRoles()
	if err := load(cmd, m.Manager); err != nil {
		m.Close()
		return nil, models.Role{}, err
	}
	role, ok := m.Find(id)
	if !ok {
		m.Close()
		return nil, models.Role{}, fmt.Errorf("role %s not found", id)
	}
	return m, role, nil
}

func editGrants(cmd *cobra.Command, arg string, perms []string, on bool) error {
	m, role, err := loadRole(cmd, arg)
	if err != nil {
		return err
	}
	defer m.Close()
	m.OpenEdit(role)
	for _, p := range perms {
		m.SetPermission(p, on)
	}
	updated, err := m.Submit(cmd.Context())
	if err != nil {
		return err
	}
	m.OpenEdit(updated)
	return view.Checkboxes(cmd.OutOrStdout(), m.PermissionOptions())
}

func init() {
	rolesListCmd.Flags().StringVar(&roleListSearch, "search", "", "Case-insensitive substring of the name")
	rolesListCmd.Flags().StringVar(&roleListPattern, "pattern", "", "Glob matched against the name")
	rolesListCmd.Flags().StringVarP(&roleListOutput, "output", "o", "table", "Output format: table, json or yaml")

	for _, c := range []*cobra.Command{rolesCreateCmd, rolesUpdateCmd} {
		c.Flags().StringVar(&roleName, "name", "", "Role name")
		c.Flags().StringSliceVarP(&rolePermissions, "permission", "p", nil, "Permission name to grant (repeatable)")
	}

	rolesDeleteCmd.Flags().BoolVarP(&roleDeleteYes, "yes", "y", false, "Delete without asking")

	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesShowCmd)
	rolesCmd.AddCommand(rolesCreateCmd)
	rolesCmd.AddCommand(rolesUpdateCmd)
	rolesCmd.AddCommand(rolesGrantCmd)
	rolesCmd.AddCommand(rolesRevokeCmd)
	rolesCmd.AddCommand(rolesDeleteCmd)
}
