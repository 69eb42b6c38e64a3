package capitest

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/celerypayroll/capi/internal/common/httpx"
	"github.com/celerypayroll/capi/internal/common/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = time.Hour

func newSecret() []byte {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("unable to generate signing secret: %v", err))
	}
	return secret
}

// AddUser registers a user that can authenticate.
func (s *Server) AddUser(username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("unable to hash password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = hash
}

// RevokeTokens invalidates every token issued so far.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = newSecret()
}

// IssueToken returns a valid token for username without a request.
func (s *Server) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": jwt.NewNumericDate(now),
		"nbf": jwt.NewNumericDate(now.Add(-2 * time.Minute)),
		"exp": jwt.NewNumericDate(now.Add(tokenValidity)),
		"jti": uuid.NewRequestID(),
	}
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Server) validateToken(tokenString string) (string, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := requestParams(r)
	username, password := str(params, "username"), str(params, "password")
	if username == "" || password == "" {
		httpx.SendError(ctx, w, http.StatusOK, codeEmptyLogin, "Empty login")
		return
	}

	s.mu.Lock()
	hash, ok := s.users[username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		httpx.SendError(ctx, w, http.StatusOK, codeInvalidLogin, "Invalid login")
		return
	}

	token, err := s.IssueToken(username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to sign token")
		httpx.SendError(ctx, w, http.StatusInternalServerError, codeUnavailable, "Service unavailable")
		return
	}
	httpx.SendResponse(ctx, w, map[string]any{"token": token})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sub, err := s.validateToken(str(requestParams(r), "token"))
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("token rejected")
			httpx.SendError(ctx, w, http.StatusOK, codeInvalidLogin, "Invalid login")
			return
		}
		log.Ctx(ctx).Debug().Str("user", sub).Msg("token accepted")
		next.ServeHTTP(w, r)
	})
}
