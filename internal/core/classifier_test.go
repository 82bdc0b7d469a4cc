package core

import (
	"strings"
	"testing"
)

func ptrEq(t *testing.T, label string, got *float64, want *float64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Fatalf("%s: got %v, want %v", label, got, want)
	case *got != *want:
		t.Fatalf("%s: got %v, want %v", label, *got, *want)
	}
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		category Category
		qty      *float64
		unit     *string
	}{
		{"run with km", "I ran 5 km today", Exercise, f(5), s("km")},
		{"rupees spelled rs", "I spent 200 rs today on lunch", Expense, f(200), nil},
		{"nothing to capture", "Had a relaxed day!", General, nil, nil},
		{"empty", "", General, nil, nil},
		{"run beats dollar", "went for a run and spent $5", Exercise, f(5), nil},
		// Keywords match as substrings and "ran" does not contain "run", so this reads
		// as an expense even though it describes exercise.
		{"ran is not run", "I ran and spent $5", Expense, f(5), nil},
		{"km beats dollar", "ran 5 km, spent $3 on water", Exercise, f(5), s("km")},
		{"km alone is exercise", "cycled 12.5km", Exercise, f(12.5), s("km")},
		{"cigarettes", "smoked 4 cigarettes", Cigarette, f(4), s("cig")},
		{"cigs", "3 cigs after lunch", Cigarette, f(3), s("cigs")},
		{"water keyword", "Drank water", Water, nil, nil},
		{"litres unit", "had 2.5l today", Water, f(2.5), s("l")},
		{"dollar prefix", "lunch $12", Expense, f(12), nil},
		{"dollar suffix", "paid 12$ for lunch", Expense, f(12), s("$")},
		{"rupee sign", "paid 300₹ for tickets", Expense, f(300), s("₹")},
		{"books", "finished 2 books", Book, f(2), s("books")},
		{"kcal is general", "ate 500 kcal", General, f(500), s("kcal")},
		{"number without unit", "slept 8 hours", General, f(8), nil},
		{"first number only", "walked 3 then 4 km", General, f(3), nil},
		{"uppercase input", "RAN 10 KM", Exercise, f(10), s("km")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in)
			if got.Category != tc.category {
				t.Fatalf("category: got %q, want %q", got.Category, tc.category)
			}
			ptrEq(t, "quantity", got.Quantity, tc.qty)
			switch {
			case got.Unit == nil && tc.unit == nil:
			case got.Unit == nil || tc.unit == nil:
				t.Fatalf("unit: got %v, want %v", got.Unit, tc.unit)
			case *got.Unit != *tc.unit:
				t.Fatalf("unit: got %q, want %q", *got.Unit, *tc.unit)
			}
			if got.Text != tc.in {
				t.Fatalf("text: got %q, want original %q", got.Text, tc.in)
			}
		})
	}
}

func TestClassifyPreservesOriginalCase(t *testing.T) {
	in := "  I RAN 5 KM  "
	if got := Classify(in).Text; got != in {
		t.Fatalf("expected original text %q, got %q", in, got)
	}
}

func TestDefaultRulesOrder(t *testing.T) {
	want := []Category{Exercise, Cigarette, Water, Expense, Book}
	rules := DefaultRules()
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.Category != want[i] {
			t.Fatalf("rule %d: got %q, want %q", i, r.Category, want[i])
		}
	}
}

func TestRulesIndependently(t *testing.T) {
	byName := map[string]Rule{}
	for _, r := range DefaultRules() {
		byName[r.Name] = r
	}
	cases := []struct {
		rule string
		text string
		unit string
		want bool
	}{
		{"exercise", "went for a run", "", true},
		{"exercise", "cycled", "km", true},
		{"exercise", "cycled", "", false},
		{"cigarette", "one cig", "", true},
		{"water", "water", "", true},
		{"water", "juice", "l", true},
		{"expense", "spent a lot", "", true},
		{"expense", "coffee ₹40", "", true},
		{"expense", "coffee", "", false},
		{"book", "read a book", "", true},
	}
	for _, tc := range cases {
		r, ok := byName[tc.rule]
		if !ok {
			t.Fatalf("missing rule %q", tc.rule)
		}
		if got := r.Match(tc.text, tc.unit); got != tc.want {
			t.Errorf("%s.Match(%q, %q) = %v, want %v", tc.rule, tc.text, tc.unit, got, tc.want)
		}
	}
}

func TestCustomRules(t *testing.T) {
	c := NewClassifier(Rule{
		Name:     "sleep",
		Category: Category("sleep"),
		Match:    func(text, _ string) bool { return strings.Contains(text, "slept") },
	})
	if got := c.Classify("Slept 8 hours").Category; got != "sleep" {
		t.Fatalf("expected custom category, got %q", got)
	}
	if got := c.Classify("ran 5 km").Category; got != General {
		t.Fatalf("custom classifier should not apply default rules, got %q", got)
	}
	if len(c.Rules()) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(c.Rules()))
	}
}

func TestClassifyNeverPanics(t *testing.T) {
	inputs := []string{"", " ", "$", "₹", ".5", "5.", "\x00\xff", strings.Repeat("9", 400), "1e10 km"}
	for _, in := range inputs {
		got := Classify(in)
		if got.Category == "" {
			t.Fatalf("empty category for %q", in)
		}
	}
}
