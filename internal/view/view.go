// Package view renders manager state for a terminal.
package view

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/nebari-dev/rbacadmin/internal/assoc"
	"github.com/nebari-dev/rbacadmin/internal/models"
)

// ErrNotInteractive is returned by Confirm when no terminal can answer.
var ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Users prints the user table, or the empty state.
func Users(w io.Writer, users []models.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, dash(u.Role), u.Status)
	}
	return tw.Flush()
}

// Roles prints the role table with granted permissions comma-joined.
func Roles(w io.Writer, roles []models.Role) error {
	if len(roles) == 0 {
		_, err := fmt.Fprintln(w, "No roles found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPERMISSIONS")
	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, dash(strings.Join(r.Permissions, ", ")))
	}
	return tw.Flush()
}

// Permissions prints the permission table.
func Permissions(w io.Writer, perms []models.Permission) error {
	if len(perms) == 0 {
		_, err := fmt.Fprintln(w, "No permissions found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range perms {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}

// LoadError is shown instead of a table when the fetch failed.
func LoadError(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "Error: %s\n", msg)
	return err
}

// Checkboxes prints one line per option, e.g. "[x] Read".
func Checkboxes(w io.Writer, opts []assoc.Option) error {
	for _, o := range opts {
		mark := " "
		if o.Checked {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s\n", mark, o.Name); err != nil {
			return err
		}
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Confirm asks question on out and reads a y/N answer from in. Anything other
// than y or yes is a no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ConfirmTTY is Confirm on stdin/stderr that refuses to guess when stdin is not
// a terminal.
func ConfirmTTY(question string) (bool, error) {
	if !IsTerminal(os.Stdin) {
		return false, ErrNotInteractive
	}
	return Confirm(os.Stdin, os.Stderr, question)
}
