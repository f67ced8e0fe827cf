package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/junaidrashid-git/canteen-api/apperror"
)

// Tokens signs and parses HS256 identity tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id that expires after ttl, or the configured TTL when ttl is zero.
func (t *Tokens) Issue(id Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = t.ttl
	}
	exp := t.now().Add(ttl)
	claims := jwt.MapClaims{
		"user_id": id.ID,
		"role":    string(id.Role),
		"exp":     exp.Unix(),
		"iat":     t.now().Unix(),
	}
	if id.Name != "" {
		claims["name"] = id.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates a token and returns its identity. Every failure is Unauthorized.
func (t *Tokens) Parse(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, apperror.Wrap(apperror.KindUnauthorized, "invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperror.New(apperror.KindUnauthorized, "invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)

	id := Identity{ID: userID, Role: Role(role), Name: name}
	switch id.Role {
	case RoleCustomer, RoleGuest, RoleStaff, RolePayment:
	default:
		return Identity{}, apperror.New(apperror.KindUnauthorized, "invalid token role")
	}
	if !id.Valid() {
		return Identity{}, apperror.New(apperror.KindUnauthorized, "invalid token claims")
	}
	return id, nil
}
