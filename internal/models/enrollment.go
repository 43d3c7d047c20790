package models

// EnrollmentRow is one ordered roster entry for a (course, month)
// pair. SlotIndex is allocated max(existing)+1 within the pair and is
// never reused after deletion. Paid and Amount are strictly local to
// the month; the identity fields are what propagation copies forward.
type EnrollmentRow struct {
	Course    string
	SlotIndex int
	Month     string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CertRef   string
	CertDate  string
	Paid      bool
	Amount    string

	// MemberID is filled on reads by a best-effort join on email.
	// Empty when the row has no matching member account.
	MemberID string
}

// CourseTotals holds the admin-entered monetary aggregates for a
// (course, month) pair. They are stored as given, never derived from
// the roster.
type CourseTotals struct {
	Course          string
	Month           string
	CashTotal       float64
	InstructorTotal float64
}
