package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Frozen  FoodType = "Frozen"
	Produce FoodType = "Produce"
	Dairy   FoodType = "Dairy"
	Bakery  FoodType = "Bakery"
	Canned  FoodType = "Canned"
	Other   FoodType = "Other"

	// DefaultUnit is used when a submission or import row carries no unit.
	DefaultUnit = "lbs"

	dateLayout = "2006-01-02"
)

type (
	// FoodType is an open-ended category label. The constants above are the
	// canonical set, free text is tolerated.
	FoodType string

	Date struct {
		time.Time
	}

	// Entry is one rescued food item or batch.
	Entry struct {
		ID            string
		FoodType      FoodType
		ItemName      string
		Quantity      float64
		Unit          string
		ExpiryDate    Date // zero when unknown
		Donor         string
		VolunteerName string
		Notes         string
		CreatedAt     time.Time
	}

	// Alert is an immutable near-expiry notice. Fields other than ID, Message
	// and CreatedAt are copied from the entry when the alert is generated.
	Alert struct {
		ID         string
		EntryID    string
		FoodType   FoodType
		ItemName   string
		Quantity   float64
		Unit       string
		ExpiryDate Date
		Donor      string
		Message    string
		CreatedAt  time.Time
	}
)

var (
	ErrEmptyItemName    = errors.New("empty item name")
	ErrNegativeQuantity = errors.New("negative quantity")
)

// CanonicalFoodTypes lists the categories offered by the entry form.
func CanonicalFoodTypes() []FoodType {
	return []FoodType{Frozen, Produce, Dairy, Bakery, Canned, Other}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// ParseDate parses a YYYY-MM-DD string. Longer ISO strings are truncated to
// their date portion first.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" for an unknown date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Normalize fills the defaults every stored entry carries.
func (e *Entry) Normalize() {
	e.FoodType = FoodType(strings.TrimSpace(string(e.FoodType)))
	if e.FoodType == "" {
		e.FoodType = Other
	}
	e.ItemName = strings.TrimSpace(e.ItemName)
	e.Unit = strings.TrimSpace(e.Unit)
	if e.Unit == "" {
		e.Unit = DefaultUnit
	}
	if e.Quantity < 0 {
		e.Quantity = 0
	}
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ItemName) == "" {
		return ErrEmptyItemName
	}
	if e.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// StampNew assigns an ID and creation time to an entry that has none yet.
// Existing values are never overwritten.
func StampNew(e *Entry, now time.Time, newID func() string) {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
}

// IsSpoilageSensitive reports whether entries of this type are subject to
// expiry alerting.
func (t FoodType) IsSpoilageSensitive() bool {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "frozen", "produce":
		return true
	}
	return false
}
