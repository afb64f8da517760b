package core

import (
	"strings"
	"time"
)

type (
	// Date is a calendar date with day precision. The time-of-day part is
	// always midnight UTC so comparisons behave like date comparisons.
	Date struct {
		time.Time
	}

	// User is the profile identity. It carries no secret material.
	User struct {
		ID        int64  `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}

	// Credential is the authentication identity. Its id is the owner id
	// stamped on expenses; the email links it to a User profile. The raw
	// password never appears here, only the bcrypt hash, and the hash is
	// never serialized.
	Credential struct {
		ID           int64  `json:"id"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
		DateOfBirth  Date   `json:"dateOfBirth"`
	}

	// Expense is a single recorded purchase owned by exactly one user.
	Expense struct {
		ID            int64     `json:"id"`
		UserID        int64     `json:"userId"`
		Item          string    `json:"item"`
		Cost          Money     `json:"cost"`
		ExpenseDate   Date      `json:"expenseDate"`
		Category      string    `json:"category,omitempty"`
		Description   string    `json:"description,omitempty"`
		PaymentMethod string    `json:"paymentMethod,omitempty"`
		Location      string    `json:"location,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// ExpenseDraft carries the caller-editable fields of an expense. The
	// owner id, record id and timestamps are always server-assigned, so a
	// draft cannot smuggle them in.
	ExpenseDraft struct {
		Item          string `json:"item"`
		Cost          Money  `json:"cost"`
		ExpenseDate   Date   `json:"expenseDate"`
		Category      string `json:"category,omitempty"`
		Description   string `json:"description,omitempty"`
		PaymentMethod string `json:"paymentMethod,omitempty"`
		Location      string `json:"location,omitempty"`
	}

	// DateRange is an inclusive calendar interval.
	DateRange struct {
		Start Date
		End   Date
	}

	// CostRange is an inclusive amount interval.
	CostRange struct {
		Min Money
		Max Money
	}
)

// NewDate builds a Date pinned to midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthRange returns the inclusive bounds of a calendar month. The last day
// is derived as first-of-next-month minus one day, which handles month
// length and leap years.
func MonthRange(year, month int) (DateRange, error) {
	if month < 1 || month > 12 {
		return DateRange{}, ErrInvalidDate
	}
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return DateRange{Start: start, End: end}, nil
}

// YearRange returns the inclusive Jan 1 .. Dec 31 bounds of a year.
func YearRange(year int) DateRange {
	return DateRange{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
}

func (r DateRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	// Inverted ranges are rejected, never silently swapped.
	if r.End.Before(r.Start.Time) {
		return ErrInvalidRange
	}
	return nil
}

func (r CostRange) Validate() error {
	if r.Max.Cents < r.Min.Cents {
		return ErrInvalidRange
	}
	return nil
}

// Validate checks the caller-editable fields. Cost is expected to be
// non-negative but the sign is not enforced here or in the store.
func (e ExpenseDraft) Validate() error {
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if err := e.ExpenseDate.Validate(); err != nil {
		return err
	}
	return nil
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
