package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/rbacadmin/internal/filter"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/view"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage users",
}

var (
	userListSearch  string
	userListRole    string
	userListPattern string
	userListOutput  string
)

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Long: `List users, optionally filtered.

--search matches names case-insensitively, --role matches the role exactly and
--pattern matches names against a glob such as "a*".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userListPattern != "" && !filter.ValidPattern(userListPattern) {
			return fmt.Errorf("invalid pattern %q", userListPattern)
		}
		m := newUsers()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		users := m.Filter(filter.Criteria{Search: userListSearch, Category: userListRole, Pattern: userListPattern})
		if userListOutput != "table" {
			return printStructured(cmd.OutOrStdout(), users, userListOutput)
		}
		return view.Users(cmd.OutOrStdout(), users)
	},
}

var (
	userName   string
	userEmail  string
	userRole   string
	userStatus string
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newUsers()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		m.OpenCreate()
		var statusErr error
		m.EditDraft(func(u *models.User) {
			u.Name, u.Email, u.Role = userName, userEmail, userRole
			if userStatus != "" {
				u.Status, statusErr = models.ParseStatus(userStatus)
			}
		})
		if statusErr != nil {
			return statusErr
		}
		created, err := m.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", created.ID)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Long:  `Update a user. Only the fields given as flags change.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m := newUsers()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		user, ok := m.Find(id)
		if !ok {
			return fmt.Errorf("user %s not found", id)
		}
		var status models.Status
		if cmd.Flags().Changed("status") {
			if status, err = models.ParseStatus(userStatus); err != nil {
				return err
			}
		}
		m.OpenEdit(user)
		m.EditDraft(func(u *models.User) {
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = userName
			}
			if flags.Changed("email") {
				u.Email = userEmail
			}
			if flags.Changed("role") {
				u.Role = userRole
			}
			if flags.Changed("status") {
				u.Status = status
			}
		})
		_, err = m.Submit(cmd.Context())
		return err
	},
}

var userDeleteYes bool

var usersDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a user",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m := newUsers()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		label := id.String()
		if u, ok := m.Find(id); ok {
			label = fmt.Sprintf("%q", u.Name)
		}
		return confirmOrYes(cmd, m.Manager, id, label, userDeleteYes)
	},
}

var usersToggleCmd = &cobra.Command{
	Use:   "toggle-status <id>",
	Short: "Switch a user between Active and Inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m := newUsers()
		defer m.Close()
		if err := load(cmd, m.Manager); err != nil {
			return err
		}
		u, err := m.ToggleStatus(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Name, u.Status)
		return nil
	},
}

func init() {
	usersListCmd.Flags().StringVar(&userListSearch, "search", "", "Case-insensitive substring of the name")
	usersListCmd.Flags().StringVar(&userListRole, "role", "", "Exact role name")
	usersListCmd.Flags().StringVar(&userListPattern, "pattern", "", "Glob matched against the name")
	usersListCmd.Flags().StringVarP(&userListOutput, "output", "o", "table", "Output format: table, json or yaml")

	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userName, "name", "", "User name")
		c.Flags().StringVar(&userEmail, "email", "", "Email address")
		c.Flags().StringVar(&userRole, "role", "", "Role name")
		c.Flags().StringVar(&userStatus, "status", "", "Active or Inactive")
	}

	usersDeleteCmd.Flags().BoolVarP(&userDeleteYes, "yes", "y", false, "Delete without asking")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersToggleCmd)
}
