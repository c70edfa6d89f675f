package models

import "github.com/shopspring/decimal"

// Trip is the ledger's view of a trip, owned by the surrounding planner.
// Active participants are the owner plus accepted collaborators.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	Name string

	// OwnerID is the trip owner; always an active participant.
	OwnerID string

	// Currency is the default label for new expenses.
	Currency string

	// Budget is optional; nil means the trip declares none.
	Budget *decimal.Decimal

	CreatedAt int64
}

// MemberStatus is a collaborator's invitation state.
type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberAccepted MemberStatus = "accepted"
	MemberRemoved  MemberStatus = "removed"
)
