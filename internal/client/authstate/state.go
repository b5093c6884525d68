// Package authstate exposes the process-wide authentication state as an
// observable value. It bridges the imperative session service to consumers
// that only want to know who, if anyone, is signed in.
package authstate

import "github.com/dmitrijs2005/agentdeck/internal/models"

type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot. User is non-nil only when Status is
// StatusAuthenticated.
type State struct {
	Status Status
	User   *models.User
}

func (s State) Loading() bool { return s.Status == StatusLoading }

type event int

const (
	eventProbed event = iota
	eventSignedIn
	eventSignedOut
)

// reduce is the only place state changes are decided. A probe result is
// applied only while still loading, so a login or sign out that raced
// ahead of the probe wins.
func reduce(cur State, ev event, user *models.User) (State, bool) {
	switch ev {
	case eventProbed:
		if cur.Status != StatusLoading {
			return cur, false
		}
		if user == nil {
			return State{Status: StatusAnonymous}, true
		}
		return State{Status: StatusAuthenticated, User: user}, true
	case eventSignedIn:
		return State{Status: StatusAuthenticated, User: user}, true
	case eventSignedOut:
		if cur.Status == StatusAnonymous {
			return cur, false
		}
		return State{Status: StatusAnonymous}, true
	}
	return cur, false
}
