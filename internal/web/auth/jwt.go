package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names carried by component tokens
const (
	ClaimComponentID = "component_id"
	ClaimScopes      = "scopes"
)

// AuthService issues and validates component tokens signed with the app auth token
type AuthService struct {
	secretKey string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService signing with appAuthToken
func NewAuthService(appAuthToken string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		secretKey: appAuthToken,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// GenerateToken issues a token for the given component and scopes
func (s *AuthService) GenerateToken(componentID string, scopes []string) (string, error) {
	if s.secretKey == "" {
		return "", fmt.Errorf("app auth token is not configured")
	}
	if scopes == nil {
		scopes = []string{}
	}

	now := s.now()
	claims := jwt.MapClaims{
		ClaimComponentID: componentID,
		ClaimScopes:      scopes,
		"exp":            now.Add(s.tokenTTL).Unix(),
		"iat":            now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken validates a token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	if s.secretKey == "" {
		return nil, fmt.Errorf("app auth token is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ComponentFromClaims returns the component ID and scopes carried by claims
func ComponentFromClaims(claims jwt.MapClaims) (string, []string, error) {
	componentID, ok := claims[ClaimComponentID].(string)
	if !ok || componentID == "" {
		return "", nil, fmt.Errorf("token has no %s claim", ClaimComponentID)
	}

	var scopes []string
	if raw, ok := claims[ClaimScopes].([]interface{}); ok {
		for _, v := range raw {
			if scope, ok := v.(string); ok {
				scopes = append(scopes, scope)
			}
		}
	}
	return componentID, scopes, nil
}

// HasScope reports whether scopes grants scope
func HasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
