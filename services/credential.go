package services

import (
	"errors"
	"fmt"
	"time"

	"coursehub/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for any JWT that is malformed, signed with
// another key or algorithm, expired, or missing the user id.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the JWT payload.
type TokenClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// CredentialService hashes passwords and issues/validates auth tokens.
// It holds no mutable state and is safe for concurrent use.
type CredentialService struct {
	secret    []byte
	expiresIn time.Duration
	cost      int
	now       func() time.Time
}

func NewCredentialService(cfg *config.Config) *CredentialService {
	cost := cfg.SaltRound
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{
		secret:    []byte(cfg.JWTSecret),
		expiresIn: cfg.JWTExpiresIn,
		cost:      cost,
		now:       time.Now,
	}
}

func (s *CredentialService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *CredentialService) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken signs a token for userID that expires after the configured duration.
func (s *CredentialService) IssueToken(userID uint) (string, error) {
	issuedAt := s.now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken returns the user id carried by a valid token.
func (s *CredentialService) VerifyToken(tokenString string) (uint, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	// tokens without exp would never expire
	if claims.ExpiresAt == nil || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// GenerateVerificationToken returns a random UUIDv4 string.
func (s *CredentialService) GenerateVerificationToken() string {
	return uuid.NewString()
}
