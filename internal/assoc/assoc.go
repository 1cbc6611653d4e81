// Package assoc edits name-based associations: the permission names held by a
// role and the role name held by a user.
package assoc

// Has reports whether name is in list.
func Has(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// Toggle removes name from list if present, otherwise appends it. The order of
// the remaining names is kept and no duplicate is ever introduced. list is not
// modified.
func Toggle(list []string, name string) []string {
	return Set(list, name, !Has(list, name))
}

// Set adds or removes name.
func Set(list []string, name string, on bool) []string {
	out := make([]string, 0, len(list)+1)
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	if !on {
		return out
	}
	if Has(list, name) {
		// Keep the existing position.
		return Dedupe(list)
	}
	return append(Dedupe(out), name)
}

// Dedupe drops repeated names, keeping first occurrences.
func Dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, n := range list {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Option is one checkbox in the association editor.
type Option struct {
	Name    string
	Checked bool
}

// Options lists every known name, checked when it is in selected.
func Options(known, selected []string) []Option {
	out := make([]Option, len(known))
	for i, n := range known {
		out[i] = Option{Name: n, Checked: Has(selected, n)}
	}
	return out
}

// Unknown returns the names in list that are not in known.
func Unknown(list, known []string) []string {
	var out []string
	for _, n := range list {
		if !Has(known, n) {
			out = append(out, n)
		}
	}
	return out
}
