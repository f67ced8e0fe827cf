// Package auth issues and verifies identity tokens and serves the login endpoints.
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleGuest    Role = "guest"
	RoleStaff    Role = "staff"
	// RolePayment is the payment collaborator delivering resolved payments.
	RolePayment Role = "payment"
)

// Identity is the caller every cart and order operation is scoped to.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name,omitempty"`
}

func (i Identity) IsStaff() bool { return i.Role == RoleStaff }

// Valid reports whether the identity can own a cart.
func (i Identity) Valid() bool { return i.ID != "" && i.Role != "" }

// PaymentActor is the identity used for payment events arriving from outside.
var PaymentActor = Identity{ID: "payment-gateway", Role: RolePayment}

const contextKey = "identity"

// SetIdentity stores the authenticated identity on the request context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(contextKey, id)
	c.Set("user_id", id.ID)
	c.Set("role", string(id.Role))
}

// FromContext returns the identity set by the token middleware.
func FromContext(c *gin.Context) (Identity, error) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, apperror.ErrUnauthorized
	}
	id, ok := v.(Identity)
	if !ok || !id.Valid() {
		return Identity{}, apperror.ErrUnauthorized
	}
	return id, nil
}
