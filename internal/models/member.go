package models

import "time"

// Member is a registered club member. AttachmentRef points at the
// stored training-plan file, NULL until an admin uploads one.
type Member struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string // empty for roster-only members created by an admin
	Phone         string
	AttachmentRef *string
	CreatedAt     time.Time
}
