package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
)

const (
	issuer   = "bookdash"
	tokenTTL = 12 * time.Hour
)

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator checks the dashboard admin's credentials and issues tokens.
// With no password hash configured it is disabled and every request passes.
type Authenticator struct {
	secret       []byte
	username     string
	passwordHash string
	now          func() time.Time
}

// NewAuthenticator creates an authenticator for a single admin account
func NewAuthenticator(secret, username, passwordHash string) *Authenticator {
	return &Authenticator{
		secret:       []byte(secret),
		username:     username,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// Enabled reports whether login is required
func (a *Authenticator) Enabled() bool {
	return a.passwordHash != ""
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Login verifies the admin credentials and returns a signed token
func (a *Authenticator) Login(username, password string) (string, error) {
	if !a.Enabled() || username != a.username || !CheckPassword(password, a.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return a.GenerateToken(username)
}

// GenerateToken creates a new JWT token for the admin
func (a *Authenticator) GenerateToken(username string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username != a.username {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
