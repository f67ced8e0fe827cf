package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
)

const guestTTL = 24 * time.Hour

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
}

// CartSwitcher hands the active cart over to a newly authenticated identity.
type CartSwitcher interface {
	SwitchIdentity(ctx context.Context, from, to Identity) ([]models.CartLine, error)
}

type Deps struct {
	Users         UserStore
	Tokens        *Tokens
	Carts         CartSwitcher
	StaffUsername string
	StaffPassword string
	Log           *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

// POST /auth/register
func Register(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		input.Name = strings.TrimSpace(input.Name)
		input.Email = strings.TrimSpace(input.Email)
		input.Phone = strings.TrimSpace(input.Phone)
		if input.Name == "" || input.Email == "" || input.Phone == "" || input.Password == "" {
			respond.BadRequest(c, "All fields are required")
			return
		}
		if !validEmail(input.Email) {
			respond.BadRequest(c, "Invalid email format")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user := models.User{
			ID:           uuid.NewString(),
			Email:        &input.Email,
			Phone:        input.Phone,
			Name:         input.Name,
			PasswordHash: string(hash),
			Role:         models.RoleCustomer,
		}
		if err := d.Users.CreateUser(c.Request.Context(), &user); err != nil {
			respond.Error(c, apperror.Transient("create user", err))
			return
		}

		d.logger().Info("user registered", zap.String("user_id", user.ID))
		d.signIn(c, http.StatusCreated, Identity{ID: user.ID, Role: RoleCustomer, Name: user.Name}, &user)
	}
}

// POST /auth/login
func Login(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Password == "" {
			respond.BadRequest(c, "Email and password are required")
			return
		}

		user, err := d.Users.FindUserByEmail(c.Request.Context(), input.Email)
		if apperror.IsKind(err, apperror.KindNotFound) {
			respond.Error(c, apperror.New(apperror.KindUnauthorized, "Invalid email or password"))
			return
		}
		if err != nil {
			respond.Error(c, apperror.Transient("find user", err))
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			respond.Error(c, apperror.New(apperror.KindUnauthorized, "Invalid email or password"))
			return
		}

		d.signIn(c, http.StatusOK, Identity{ID: user.ID, Role: RoleCustomer, Name: user.Name}, &user)
	}
}

// POST /auth/staff-login
func StaffLogin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input StaffLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(d.StaffUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(d.StaffPassword)) == 1
		if d.StaffUsername == "" || !userOK || !passOK {
			d.logger().Warn("staff login rejected", zap.String("username", input.Username))
			respond.Error(c, apperror.New(apperror.KindUnauthorized, "Invalid staff credentials"))
			return
		}

		id := Identity{ID: "staff:" + input.Username, Role: RoleStaff, Name: input.Username}
		d.signIn(c, http.StatusOK, id, nil)
	}
}

// POST /auth/guest
func CreateGuestUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := "guest_" + generateRandomString(16)
		expiresAt := time.Now().Add(guestTTL)

		guest := models.User{
			ID:        guestID,
			Role:      models.RoleGuest,
			ExpiresAt: &expiresAt,
		}
		if err := d.Users.CreateUser(c.Request.Context(), &guest); err != nil {
			respond.Error(c, apperror.Transient("create guest", err))
			return
		}

		id := Identity{ID: guestID, Role: RoleGuest}
		token, exp, err := d.Tokens.Issue(id, guestTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guestID,
			"token":      token,
			"expires_at": exp,
			"identity":   id,
		})
	}
}

// GET /auth/verify
func Verify(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := d.Tokens.Parse(BearerToken(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		resp := gin.H{"valid": true, "identity": id}
		if id.Role == RoleCustomer {
			user, err := d.Users.GetUser(c.Request.Context(), id.ID)
			if err != nil {
				respond.Error(c, apperror.Transient("get user", err))
				return
			}
			resp["user"] = user
		}
		c.JSON(http.StatusOK, resp)
	}
}

// signIn issues a token for id and swaps the active cart over from the
// identity presented on the request, if any.
func (d Deps) signIn(c *gin.Context, status int, id Identity, user *models.User) {
	token, exp, err := d.Tokens.Issue(id, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	// A missing or expired previous token just means there is nothing to switch from.
	prev, _ := d.Tokens.Parse(BearerToken(c))

	resp := gin.H{
		"token":      token,
		"expires_at": exp,
		"identity":   id,
	}
	if user != nil {
		resp["user"] = user
	}
	if d.Carts != nil {
		lines, err := d.Carts.SwitchIdentity(c.Request.Context(), prev, id)
		if err != nil {
			// The login itself succeeded; the cart reloads on the next request.
			d.logger().Warn("cart switch failed", zap.String("to", id.ID), zap.Error(err))
		} else {
			if lines == nil {
				lines = []models.CartLine{}
			}
			resp["cart"] = lines
		}
	}
	c.JSON(status, resp)
}

// BearerToken extracts the token from "Authorization: Bearer <t>", falling
// back to the token query parameter used by websocket clients.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h != "" {
		if strings.HasPrefix(strings.ToLower(h), "bearer ") {
			return strings.TrimSpace(h[len("bearer "):])
		}
		return strings.TrimSpace(h)
	}
	return c.Query("token")
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}
