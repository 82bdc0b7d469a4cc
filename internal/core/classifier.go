package core

import (
	"regexp"
	"strconv"
	"strings"
)

// quantityPattern captures the first number in a message and an optional unit
// token right after it. Alternation is leftmost-first, so "cigarettes" yields "cig".
var quantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(km|l|books?|cigs?|cigarettes?|kcal|\$|₹)?`)

// Classification is the result of classifying one message.
type Classification struct {
	Category Category
	Quantity *float64
	Unit     *string
	// Text is the caller's input, unmodified.
	Text string
}

// Rule maps a predicate over the lower-cased text and the matched unit to a category.
type Rule struct {
	Name     string
	Category Category
	Match    func(text, unit string) bool
}

// Classifier evaluates rules in order; the first matching rule wins.
type Classifier struct {
	rules    []Rule
	fallback Category
}

// DefaultRules returns the built-in rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "exercise",
			Category: Exercise,
			Match: func(text, unit string) bool {
				return strings.Contains(text, "run") || unit == "km"
			},
		},
		{
			Name:     "cigarette",
			Category: Cigarette,
			Match: func(text, _ string) bool {
				return strings.Contains(text, "cig")
			},
		},
		{
			Name:     "water",
			Category: Water,
			Match: func(text, unit string) bool {
				return strings.Contains(text, "water") || unit == "l"
			},
		},
		{
			Name:     "expense",
			Category: Expense,
			Match: func(text, _ string) bool {
				return strings.Contains(text, "spent") ||
					strings.Contains(text, "$") ||
					strings.Contains(text, "₹")
			},
		},
		{
			Name:     "book",
			Category: Book,
			Match: func(text, _ string) bool {
				return strings.Contains(text, "book")
			},
		},
	}
}

// NewClassifier returns a classifier over rules. With no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules, fallback: General}
}

var defaultClassifier = NewClassifier()

// Classify classifies text with the default rules.
func Classify(text string) Classification {
	return defaultClassifier.Classify(text)
}

// Classify never fails: text without a number or a matching keyword
// resolves to the fallback category with no quantity and no unit.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)
	qty, unit := extractQuantity(lower)

	var unitToken string
	if unit != nil {
		unitToken = *unit
	}

	result := Classification{
		Category: c.fallback,
		Quantity: qty,
		Unit:     unit,
		Text:     text,
	}
	for _, r := range c.rules {
		if r.Match(lower, unitToken) {
			result.Category = r.Category
			break
		}
	}
	return result
}

// Rules returns a copy of the classifier's rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

func extractQuantity(text string) (*float64, *string) {
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, nil
	}
	if m[2] == "" {
		return &v, nil
	}
	unit := m[2]
	return &v, &unit
}
