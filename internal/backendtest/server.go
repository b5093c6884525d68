// Package backendtest runs an in-process stand-in for the agentdeck backend
// API: register, login, the identity probe and token validation. Passwords
// are bcrypt-hashed and tokens are HS256 JWTs, the same shapes the real
// backend produces. It exists for tests only.
package backendtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/dmitrijs2005/agentdeck/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type account struct {
	user         models.User
	passwordHash []byte
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Server struct {
	*httptest.Server

	secret []byte

	mu      sync.Mutex
	byEmail map[string]*account
	byID    map[string]*account

	meCalls       atomic.Int32
	validateCalls atomic.Int32
}

// New starts a backend and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:  []byte("backendtest-secret"),
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", s.me).Methods(http.MethodGet)
	r.HandleFunc("/validate-token", s.validateToken).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// MeCalls reports how many identity probes reached the backend.
func (s *Server) MeCalls() int { return int(s.meCalls.Load()) }

// ValidateCalls reports how many /validate-token requests reached the backend.
func (s *Server) ValidateCalls() int { return int(s.validateCalls.Load()) }

// IssueToken signs a token for userID that expires at exp.
func (s *Server) IssueToken(userID, email string, exp time.Time) string {
	now := time.Now()
	c := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// Forget deletes an account so that tokens issued for it stop resolving.
func (s *Server) Forget(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byEmail[email]; ok {
		delete(s.byID, a.user.ID)
		delete(s.byEmail, email)
	}
}

type credentials struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[in.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "User with this email already exists")
		return
	}
	a := &account{
		user:         models.User{ID: uuid.NewString(), Email: in.Email, FullName: in.FullName},
		passwordHash: hash,
	}
	s.byEmail[in.Email] = a
	s.byID[a.user.ID] = a
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  a.user,
		"token": s.IssueToken(a.user.ID, a.user.Email, time.Now().Add(tokenTTL)),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	a, ok := s.byEmail[in.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  a.user,
		"token": s.IssueToken(a.user.ID, a.user.Email, time.Now().Add(tokenTTL)),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.meCalls.Add(1)

	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeader), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		writeError(w, http.StatusUnauthorized, "No authorization token provided")
		return
	}

	user, err := s.resolve(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) validateToken(w http.ResponseWriter, r *http.Request) {
	s.validateCalls.Add(1)

	var in struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "Token is required"})
		return
	}

	user, err := s.resolve(in.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}

func (s *Server) resolve(token string) (*models.User, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("Token has expired")
		}
		return nil, errors.New("Invalid token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[c.UserID]
	if !ok {
		return nil, errors.New("User not found")
	}
	u := a.user
	return &u, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
