package cli

import (
	"errors"

	"github.com/dmitrijs2005/agentdeck/internal/client/client"
	"github.com/dmitrijs2005/agentdeck/internal/store"
)

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var rejected *client.AuthRejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.Is(err, store.ErrUnauthenticated):
		return "please log in first"
	case errors.Is(err, store.ErrStoreUnavailable):
		return store.ErrStoreUnavailable.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "backend unavailable, try again later"
	default:
		return err.Error()
	}
}
