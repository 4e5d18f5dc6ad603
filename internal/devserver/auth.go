package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/travel-journal/internal/domain"
)

// claims is the JWT payload the dev server issues. The client treats the
// token as opaque; only the dev server reads it back.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// jwtManager mints and verifies the bearer tokens the dev server hands out.
type jwtManager struct {
	secret []byte
	ttl    time.Duration
}

func newJWTManager(secret string, ttl time.Duration) *jwtManager {
	return &jwtManager{secret: []byte(secret), ttl: ttl}
}

func (m *jwtManager) issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("devserver: sign token: %w", err)
	}
	return signed, nil
}

func (m *jwtManager) verify(token string) (uuid.UUID, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", domain.ErrAuth)
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", domain.ErrAuth)
	}
	return userID, nil
}

// ---- handlers --------------------------------------------------------------

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}
	if strings.TrimSpace(body.Username) == "" || body.Password == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "validation_error", "username and password are required")
		return
	}
	if !strings.Contains(body.Email, "@") {
		s.writeError(w, http.StatusUnprocessableEntity, "validation_error", "a valid email is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	userID, err := s.store.CreateUser(r.Context(), body.Username, body.Email, string(hash))
	if errors.Is(err, ErrDuplicate) {
		s.writeError(w, http.StatusConflict, "conflict", "an account with that username or email already exists")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	token, err := s.jwt.issue(userID, body.Username)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}

	userID, hash, err := s.store.UserByUsername(r.Context(), body.Username)
	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
		return
	}

	token, err := s.jwt.issue(userID, body.Username)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ctxKey is the private context key type for values set by requireAuth.
type ctxKey int

const ctxKeyUserID ctxKey = iota

// requireAuth verifies the bearer token and stores the user id in the
// request context. Every /api route except the auth pair sits behind it.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		userID, err := s.jwt.verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUserID(r.Context(), userID)))
	})
}
