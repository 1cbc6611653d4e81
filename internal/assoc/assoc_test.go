package assoc

import (
	"reflect"
	"testing"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name string
		list []string
		tog  string
		want []string
	}{
		{"add", []string{"Read"}, "Write", []string{"Read", "Write"}},
		{"remove keeps order", []string{"Read", "Write", "Delete"}, "Write", []string{"Read", "Delete"}},
		{"add to empty", nil, "Read", []string{"Read"}},
		{"remove duplicates too", []string{"Read", "Write", "Read"}, "Read", []string{"Write"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.list...)
			got := Toggle(in, tt.tog)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Toggle(%v, %q) = %v, want %v", tt.list, tt.tog, got, tt.want)
			}
			if !reflect.DeepEqual(in, tt.list) && tt.list != nil {
				t.Errorf("input modified: %v", in)
			}
		})
	}
}

func TestSetNeverDuplicates(t *testing.T) {
	got := Set([]string{"Read", "Write"}, "Read", true)
	if !reflect.DeepEqual(got, []string{"Read", "Write"}) {
		t.Fatalf("got %v", got)
	}
	got = Set([]string{"Read"}, "Write", false)
	if !reflect.DeepEqual(got, []string{"Read"}) {
		t.Fatalf("got %v", got)
	}
}

func TestOptions(t *testing.T) {
	got := Options([]string{"Read", "Write", "Delete"}, []string{"Write"})
	want := []Option{{"Read", false}, {"Write", true}, {"Delete", false}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestUnknown(t *testing.T) {
	got := Unknown([]string{"Read", "Fly", "Write"}, []string{"Read", "Write"})
	if !reflect.DeepEqual(got, []string{"Fly"}) {
		t.Fatalf("got %v", got)
	}
	if Unknown([]string{"Read"}, []string{"Read"}) != nil {
		t.Fatal("expected nil when all names are known")
	}
}
