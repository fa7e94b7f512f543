package service

import (
	"errors"
	"fmt"
	"go-bank-console/logger"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 12

const (
	sessionAudience = "console-session"
	formAudience    = "console-form"
)

var (
	ErrInvalidSession   = errors.New("invalid or expired session token")
	ErrInvalidFormToken = errors.New("invalid or expired form token")
)

// AuthService checks operator credentials and signs the console session
// cookie.
type AuthService struct {
	operatorUser string
	passwordHash string
	secretKey    []byte
	sessionTTL   time.Duration
	now          func() time.Time
}

func NewAuthService(operatorUser, passwordHash, secretKey string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		operatorUser: operatorUser,
		passwordHash: passwordHash,
		secretKey:    []byte(secretKey),
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

// OperatorAuthEnabled reports whether a password hash is configured.
func (s *AuthService) OperatorAuthEnabled() bool {
	return s.passwordHash != ""
}

// CheckOperator verifies basic-auth credentials against the configured
// operator.
func (s *AuthService) CheckOperator(user, password string) bool {
	if user != s.operatorUser {
		return false
	}
	return CheckPasswordHash(password, s.passwordHash)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueSessionToken signs a token whose subject is sessionID.
func (s *AuthService) IssueSessionToken(sessionID string) (string, error) {
	return s.signToken(sessionID, sessionAudience)
}

// ParseSessionToken returns the session id carried by a valid token.
func (s *AuthService) ParseSessionToken(tokenString string) (string, error) {
	subject, err := s.parseToken(tokenString, sessionAudience)
	if err != nil {
		return "", ErrInvalidSession
	}
	return subject, nil
}

// IssueFormToken signs the token the console's forms post back. It is only
// valid together with the session it was issued for.
func (s *AuthService) IssueFormToken(sessionID string) (string, error) {
	return s.signToken(sessionID, formAudience)
}

// CheckFormToken verifies a posted form token against the request's session.
func (s *AuthService) CheckFormToken(tokenString, sessionID string) error {
	subject, err := s.parseToken(tokenString, formAudience)
	if err != nil || sessionID == "" || subject != sessionID {
		return ErrInvalidFormToken
	}
	return nil
}

func (s *AuthService) signToken(subject, audience string) (string, error) {
	now := s.now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		logger.Log.WithError(err).WithField("audience", audience).Error("Failed to sign token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parseToken(tokenString, audience string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
