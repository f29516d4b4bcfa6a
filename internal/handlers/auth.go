package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/utils"
)

type AuthHandler struct {
	Profiles     *profile.ProfileService
	JWTSecret    string
	Expires      int
	CookieSecure bool
}

func NewAuthHandler(profiles *profile.ProfileService, jwtSecret string, expiresMin int, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Profiles: profiles, JWTSecret: jwtSecret, Expires: expiresMin, CookieSecure: cookieSecure}
}

type RegisterReq struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=client freelancer"` // admin never from public
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	p, err := h.Profiles.Register(c.UserContext(), profile.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     models.Role(req.Role),
	})
	if errors.Is(err, profile.ErrEmailTaken) {
		errs := FieldErrors{}
		errs.Add("email", "Email is already registered")
		return validationFail(c, errs)
	}
	if err != nil {
		return fail(c, err)
	}

	if err := h.issue(c, p); err != nil {
		return fail(c, err)
	}
	return created(c, "Registered", fiber.Map{"user": p})
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	p, err := h.Profiles.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	if err := h.issue(c, p); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in",
		"data":    fiber.Map{"user": p},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearCookie(c, utils.TokenCookie, h.CookieSecure)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// Me returns the caller's own profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Profiles.Get(c.UserContext(), uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *AuthHandler) issue(c *fiber.Ctx, p *models.Profile) error {
	token, err := utils.SignJWT(h.JWTSecret, p.ID.String(), string(p.Role), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     utils.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func clearCookie(c *fiber.Ctx, name string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	})
}
