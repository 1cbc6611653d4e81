package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nebari-dev/rbacadmin/internal/cliclient"
	"github.com/nebari-dev/rbacadmin/internal/config"
	"github.com/nebari-dev/rbacadmin/internal/logger"
	"github.com/nebari-dev/rbacadmin/internal/manager"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/notify"
	"github.com/nebari-dev/rbacadmin/internal/view"
)

var globalFlags struct {
	configPath string
	apiURL     string
	logLevel   string
	logFormat  string
}

// app is the state shared by every command once setup has run.
var app struct {
	cfg      *config.Config
	log      *slog.Logger
	client   *cliclient.Client
	notifier notify.Notifier
	closers  []func()
}

// confirmDelete asks before a delete. Tests replace it.
var confirmDelete = view.ConfirmTTY

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(globalFlags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if globalFlags.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(globalFlags.apiURL, "/")
	}
	if globalFlags.logLevel != "" {
		cfg.Log.Level = globalFlags.logLevel
	}
	if globalFlags.logFormat != "" {
		cfg.Log.Format = globalFlags.logFormat
	}

	app.cfg = cfg
	app.log = logger.Init(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	app.client = cliclient.New(cfg.API.BaseURL,
		cliclient.WithTimeout(cfg.API.Timeout),
		cliclient.WithLogger(app.log),
	)

	notifiers := notify.Multi{notify.NewWriter(cmd.ErrOrStderr()), notify.NewLogger(app.log)}
	if cfg.Notify.ValkeyAddr != "" {
		feed, err := notify.NewValkey(cfg.Notify.ValkeyAddr, cfg.Notify.Channel)
		if err != nil {
			// The feed is optional; the command still works without it.
			app.log.Warn("Notification feed unavailable", "addr", cfg.Notify.ValkeyAddr, "error", err)
		} else {
			notifiers = append(notifiers, feed)
			app.closers = append(app.closers, feed.Close)
		}
	}
	app.notifier = notifiers
	return nil
}

func teardown() {
	for _, c := range app.closers {
		c()
	}
	app.closers = nil
}

func managerOptions() []manager.Option {
	return []manager.Option{
		manager.WithNotifier(app.notifier),
		manager.WithLogger(app.log),
	}
}

func newUsers() *manager.Users {
	return manager.NewUsers(app.client.Users(), app.client.Roles(), managerOptions()...)
}

func newRoles() *manager.Roles {
	return manager.NewRoles(app.client.Roles(), app.client.Permissions(), managerOptions()...)
}

func newPermissions() *manager.Permissions {
	return manager.NewPermissions(app.client.Permissions(),
		manager.PermissionOption{ClientIDs: app.cfg.API.ClientPermissionIDs},
		managerOptions()...)
}

// parseID turns a command argument into a record id.
func parseID(arg string) (models.ID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return models.ID{}, fmt.Errorf("id must not be empty")
	}
	return models.ParseID(arg), nil
}

// printStructured writes v as json or yaml.
func printStructured(w io.Writer, v interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q (use table, json or yaml)", format)
}

// confirmOrYes runs the pending deletion on m after confirmation.
func confirmOrYes[T models.Record](cmd *cobra.Command, m *manager.Manager[T], id models.ID, label string, yes bool) error {
	m.RequestDelete(id)
	if !yes {
		ok, err := confirmDelete(fmt.Sprintf("Delete %s %s?", m.Entity(), label))
		if err != nil {
			m.CancelDelete()
			return err
		}
		if !ok {
			m.CancelDelete()
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		}
	}
	_, err := m.ConfirmDelete(cmd.Context())
	return err
}

// load fetches m and, on failure, prints the error where the table would have
// been.
func load[T models.Record](cmd *cobra.Command, m *manager.Manager[T]) error {
	if err := m.Load(cmd.Context()); err != nil {
		view.LoadError(cmd.OutOrStdout(), m.State().Err)
		return err
	}
	return nil
}
