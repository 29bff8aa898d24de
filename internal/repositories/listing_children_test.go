package repositories

import (
	"reflect"
	"testing"

	"marketBack/internal/models"
)

func TestDiffInts(t *testing.T) {
	tests := []struct {
		name             string
		current, desired []int
		added, removed   []int
	}{
		{"empty", nil, nil, nil, nil},
		{"all new", nil, []int{1, 2}, []int{1, 2}, nil},
		{"all removed", []int{1, 2}, nil, nil, []int{1, 2}},
		{"mixed", []int{1, 2, 3}, []int{3, 4, 4, 1}, []int{4}, []int{2}},
		{"unchanged", []int{5}, []int{5}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffInts(tt.current, tt.desired)
			if !reflect.DeepEqual(added, tt.added) || !reflect.DeepEqual(removed, tt.removed) {
				t.Fatalf("got +%v -%v, want +%v -%v", added, removed, tt.added, tt.removed)
			}
		})
	}
}

func TestDiffStrings(t *testing.T) {
	added, removed := diffStrings([]string{"seo", "saas"}, []string{"saas", "ecommerce", "ecommerce"})
	if !reflect.DeepEqual(added, []string{"ecommerce"}) {
		t.Fatalf("unexpected added %v", added)
	}
	if !reflect.DeepEqual(removed, []string{"seo"}) {
		t.Fatalf("unexpected removed %v", removed)
	}
}

func TestDiffAnswers(t *testing.T) {
	current := []models.ListingAnswer{
		{QuestionID: 1, Answer: "yes"},
		{QuestionID: 2, Answer: "no"},
		{QuestionID: 3, Answer: "maybe"},
	}
	desired := []models.ListingAnswer{
		{QuestionID: 4, Answer: "new"},
		{QuestionID: 2, Answer: "first"},
		{QuestionID: 1, Answer: "yes"},
		{QuestionID: 2, Answer: "changed"},
	}

	d := diffAnswers(current, desired)
	if !reflect.DeepEqual(d.insert, []models.ListingAnswer{{QuestionID: 4, Answer: "new"}}) {
		t.Fatalf("unexpected insert %v", d.insert)
	}
	if !reflect.DeepEqual(d.update, []models.ListingAnswer{{QuestionID: 2, Answer: "changed"}}) {
		t.Fatalf("unexpected update %v", d.update)
	}
	if !reflect.DeepEqual(d.remove, []int{3}) {
		t.Fatalf("unexpected remove %v", d.remove)
	}
	if d.empty() {
		t.Fatal("diff should not be empty")
	}
	if !diffAnswers(current, current).empty() {
		t.Fatal("identical answers should produce an empty diff")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?,?,?" {
		t.Fatalf("got %q", got)
	}
	if got := placeholders(1); got != "?" {
		t.Fatalf("got %q", got)
	}
}
