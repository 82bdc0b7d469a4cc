package core

import (
	"time"
)

const (
	Exercise  Category = "exercise"
	Cigarette Category = "cigarette"
	Water     Category = "water"
	Expense   Category = "expense"
	Book      Category = "book"
	General   Category = "general"
)

type (
	// Category is the life-tracking bucket an entry belongs to.
	Category string

	// Entry is a classified message. The ID is assigned by the store.
	Entry struct {
		ID        int64
		Message   string
		Category  Category
		Quantity  *float64
		Unit      *string
		Timestamp time.Time
	}
)

// Categories returns the built-in categories in rule order, general last.
func Categories() []Category {
	return []Category{Exercise, Cigarette, Water, Expense, Book, General}
}

func (c Category) String() string {
	return string(c)
}

// NewEntry builds an unsaved entry from a classification, stamped in UTC.
func NewEntry(c Classification, now time.Time) Entry {
	return Entry{
		Message:   c.Text,
		Category:  c.Category,
		Quantity:  c.Quantity,
		Unit:      c.Unit,
		Timestamp: now.UTC(),
	}
}

// HasQuantity reports whether a number was captured from the message.
func (e Entry) HasQuantity() bool {
	return e.Quantity != nil
}

// UnitOrEmpty returns the unit token, or "" when none was recognized.
func (e Entry) UnitOrEmpty() string {
	if e.Unit == nil {
		return ""
	}
	return *e.Unit
}
