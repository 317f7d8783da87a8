package routing

import "fmt"

const (
	PolicyGlobal   = "global"
	PolicyLocal    = "session"
	PolicyDisabled = "none"
)

// SessionTable is the view of session sets a policy may update.
type SessionTable interface {
	// Members returns the session set of owner.
	Members(owner UserID) []UserID
	// Join adds member to the session set of owner.
	Join(owner, member UserID)
}

// Policy decides how session membership spreads when user contacts link.
// Only the session set of link is updated. Members rejected by allowed are
// never added.
type Policy interface {
	Name() string
	Propagate(table SessionTable, user, link UserID, allowed func(UserID) bool)
}

// GlobalPolicy lets link adopt user and every member of user's sessions,
// so session knowledge spreads across the network over repeated contacts.
type GlobalPolicy struct{}

func (GlobalPolicy) Name() string { return PolicyGlobal }

func (GlobalPolicy) Propagate(table SessionTable, user, link UserID, allowed func(UserID) bool) {
	for _, member := range table.Members(user) {
		if allowed(member) {
			table.Join(link, member)
		}
	}
	if allowed(user) {
		table.Join(link, user)
	}
}

// LocalPolicy lets link adopt only user.
type LocalPolicy struct{}

func (LocalPolicy) Name() string { return PolicyLocal }

func (LocalPolicy) Propagate(table SessionTable, user, link UserID, allowed func(UserID) bool) {
	if allowed(user) {
		table.Join(link, user)
	}
}

// DisabledPolicy never creates sessions, so batching never triggers.
type DisabledPolicy struct{}

func (DisabledPolicy) Name() string { return PolicyDisabled }

func (DisabledPolicy) Propagate(SessionTable, UserID, UserID, func(UserID) bool) {}

// PolicyByName returns one of the builtin policies.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyGlobal:
		return GlobalPolicy{}, nil
	case PolicyLocal:
		return LocalPolicy{}, nil
	case PolicyDisabled, "":
		return DisabledPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPolicy, name)
	}
}
