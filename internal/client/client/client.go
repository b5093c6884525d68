package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/agentdeck/internal/models"
)

// AuthResponse is the success body of register and login.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type Client interface {
	Register(ctx context.Context, email, password string, fullName *string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context, token string) (*models.User, error)
	Do(req *http.Request) (*http.Response, error)
}
