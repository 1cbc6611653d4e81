package filter

import (
	"reflect"
	"testing"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

func sampleUsers() []models.User {
	return []models.User{
		{ID: models.NumericID(1), Name: "Anna", Role: "Admin"},
		{ID: models.NumericID(2), Name: "Bob", Role: "Viewer"},
		{ID: models.NumericID(3), Name: "Hannah", Role: "Viewer"},
		{ID: models.NumericID(4), Name: "STRASSE", Role: "Editor"},
	}
}

func names(us []models.User) []string {
	return models.Names(us)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Apply([]models.User{{Name: "Anna"}, {Name: "Bob"}}, Criteria{Search: "an"})
	if !reflect.DeepEqual(names(got), []string{"Anna"}) {
		t.Fatalf("got %v", names(got))
	}
}

func TestSearchUsesUnicodeFolding(t *testing.T) {
	got := Apply(sampleUsers(), Criteria{Search: "straße"})
	if !reflect.DeepEqual(names(got), []string{"STRASSE"}) {
		t.Fatalf("got %v", names(got))
	}
}

func TestCategoryIsExactMatch(t *testing.T) {
	got := Apply(sampleUsers(), Criteria{Category: "Viewer"})
	if !reflect.DeepEqual(names(got), []string{"Bob", "Hannah"}) {
		t.Fatalf("got %v", names(got))
	}
	if got := Apply(sampleUsers(), Criteria{Category: "viewer"}); len(got) != 0 {
		t.Fatalf("category match must be exact, got %v", names(got))
	}
}

func TestPredicatesCommuteAndAreIdempotent(t *testing.T) {
	users := sampleUsers()
	search := Criteria{Search: "an"}
	role := Criteria{Category: "Viewer"}

	a := Apply(Apply(users, search), role)
	b := Apply(Apply(users, role), search)
	both := Apply(users, Criteria{Search: "an", Category: "Viewer"})

	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, both) {
		t.Fatalf("filters do not commute: %v / %v / %v", names(a), names(b), names(both))
	}
	if !reflect.DeepEqual(Apply(both, search), both) {
		t.Fatal("filter is not idempotent")
	}
	if !reflect.DeepEqual(names(both), []string{"Hannah"}) {
		t.Fatalf("got %v", names(both))
	}
}

func TestEmptyCriteriaKeepsEverything(t *testing.T) {
	users := sampleUsers()
	got := Apply(users, Criteria{})
	if !reflect.DeepEqual(got, users) {
		t.Fatalf("got %v", names(got))
	}
	if !(Criteria{}).Empty() {
		t.Fatal("zero criteria should be empty")
	}
}

func TestPatternGlob(t *testing.T) {
	perms := []models.Permission{{Name: "ReadUsers"}, {Name: "ReadRoles"}, {Name: "WriteUsers"}}
	got := Apply(perms, Criteria{Pattern: "Read*"})
	if !reflect.DeepEqual(models.Names(got), []string{"ReadUsers", "ReadRoles"}) {
		t.Fatalf("got %v", models.Names(got))
	}
	if got := Apply(perms, Criteria{Pattern: "[Read"}); len(got) != 0 {
		t.Fatalf("malformed pattern should match nothing, got %v", models.Names(got))
	}
	if ValidPattern("[Read") {
		t.Fatal("expected malformed pattern to be invalid")
	}
}
