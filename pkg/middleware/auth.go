package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claims are issued by the identity service. Subject carries the user id.
type Claims struct {
	Gender string `json:"gender"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens and turns them into an Actor.
type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(config utils.JWTConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(config.Secret), issuer: config.Issuer}
}

func (v *TokenVerifier) Verify(token string) (entity.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return entity.Anonymous, err
	}
	if !parsed.Valid {
		return entity.Anonymous, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return entity.Anonymous, fmt.Errorf("invalid subject: %w", err)
	}

	gender := entity.Gender(strings.ToUpper(claims.Gender))
	if gender != entity.GenderMale && gender != entity.GenderFemale {
		gender = ""
	}

	return entity.Authenticated(userID, gender), nil
}

// Issue signs a token for the given user. The identity service owns token
// issuance in production; this is used by tests and local tooling.
func (v *TokenVerifier) Issue(userID uuid.UUID, gender entity.Gender, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Gender: string(gender),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(verifier *TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("Rejected access token",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetActor(r.Context(), actor)))
		})
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// everyone else through as anonymous.
func OptionalAuth(verifier *TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("Ignoring invalid token on public route",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetActor(r.Context(), actor)))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter that browsers use for websockets.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}
