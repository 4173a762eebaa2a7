package user

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sariva/clinic/internal/platform/auth"
	"github.com/sariva/clinic/internal/platform/httpx"
)

// Tokens issues bearer tokens for authenticated users.
type Tokens interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type Handler struct {
	svc               *Service
	tokens            Tokens
	revocations       auth.RevocationStore
	allowRegistration bool
}

func NewHandler(svc *Service, tokens Tokens, revocations auth.RevocationStore, allowRegistration bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, revocations: revocations, allowRegistration: allowRegistration}
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// RegisterRoutes mounts /auth. register and login are public; the auth
// skipper lets them through without a token.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, auth.RequireRole(auth.AllRoles...))
	g.POST("/logout", h.Logout, auth.RequireRole(auth.AllRoles...))
}

func (h *Handler) Register(c echo.Context) error {
	if !h.allowRegistration {
		return echo.NewHTTPError(http.StatusForbidden, "Registration is disabled")
	}
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	// Only an administrator may hand out the admin role.
	if in.Role == auth.RoleAdmin && !auth.HasRole(auth.RolesFromContext(c.Request().Context()), auth.RoleAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only an admin can register another admin")
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	u, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, u)
}

func (h *Handler) Me(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		// Development identity without an account row.
		role := auth.RoleAdmin
		if len(claims.Roles) > 0 {
			role = claims.Roles[0]
		}
		return httpx.OK(c, &User{Name: claims.Name, Email: claims.Email, Role: role, IsActive: true})
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, u)
}

func (h *Handler) Logout(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims != nil && claims.ID != "" && claims.ExpiresAt != nil && h.revocations != nil {
		if err := h.revocations.Revoke(c.Request().Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}
	return httpx.Message(c, "Logged out successfully")
}

func (h *Handler) respondWithToken(c echo.Context, code int, u *User) error {
	token, _, err := h.tokens.Issue(u.Identity())
	if err != nil {
		return err
	}
	return c.JSON(code, tokenResponse{Success: true, Token: token, User: u})
}
