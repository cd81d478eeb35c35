package types

import "fmt"

// ListingStatus is the approval state of a car listing
type ListingStatus string

const (
	StatusPending     ListingStatus = "pending"
	StatusApproved    ListingStatus = "approved"
	StatusRejected    ListingStatus = "rejected"
	StatusSold        ListingStatus = "sold"
	StatusMaintenance ListingStatus = "maintenance"
)

// ListingStatuses lists every status
var ListingStatuses = []ListingStatus{StatusPending, StatusApproved, StatusRejected, StatusSold, StatusMaintenance}

// Actor roles that may drive a transition
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type transition struct {
	from, to ListingStatus
}

// transitions maps each legal move to the roles allowed to make it.
// "owner" is the seller who created the listing.
var transitions = map[transition][]string{
	{StatusPending, StatusApproved}:     {RoleAdmin},
	{StatusPending, StatusRejected}:     {RoleAdmin},
	{StatusApproved, StatusSold}:        {RoleAdmin, "owner"},
	{StatusApproved, StatusMaintenance}: {RoleAdmin, "owner"},
	{StatusMaintenance, StatusApproved}: {RoleAdmin, "owner"},
	{StatusRejected, StatusPending}:     {"owner"},
}

// ParseListingStatus validates s against the known statuses
func ParseListingStatus(s string) (ListingStatus, error) {
	for _, st := range ListingStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether the move from -> to exists at all
func CanTransition(from, to ListingStatus) bool {
	_, ok := transitions[transition{from, to}]
	return ok
}

// TransitionAllowed reports whether an actor may move a listing from -> to.
// isAdmin and isOwner describe the actor relative to the listing.
func TransitionAllowed(from, to ListingStatus, isAdmin, isOwner bool) bool {
	roles, ok := transitions[transition{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if (r == RoleAdmin && isAdmin) || (r == "owner" && isOwner) {
			return true
		}
	}
	return false
}
