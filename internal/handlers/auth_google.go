package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthHandler struct {
	Auth            *AuthHandler
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string

	// FetchUser is swapped in tests; defaults to the Google userinfo endpoint.
	FetchUser func(ctx context.Context, cfg *oauth2.Config, code string) (*GoogleUser, error)
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Auth.CookieSecure,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	next := c.Query("next", "/")
	st := randomState(32)

	h.tempCookie(c, "oauth_state", st)
	h.tempCookie(c, "oauth_next", next)

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type GoogleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUser(ctx context.Context, cfg *oauth2.Config, code string) (*GoogleUser, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	resp, err := cfg.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &gu, nil
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code/state")
	}

	stCookie := c.Cookies("oauth_state")
	if stCookie == "" || stCookie != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
	}
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}

	fetch := h.FetchUser
	if fetch == nil {
		fetch = fetchGoogleUser
	}
	gu, err := fetch(c.UserContext(), h.oauthCfg(), code)
	if err != nil {
		logger.L().Warn("google sign-in failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).SendString("Failed to sign in with Google")
	}
	if !gu.VerifiedEmail {
		return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape("Google email is not verified"), http.StatusTemporaryRedirect)
	}

	p, err := h.Auth.Profiles.GoogleSignIn(c.UserContext(), gu.Email, gu.Name, gu.Picture)
	if apperr.IsCode(err, apperr.CodeForbidden) {
		return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape(apperr.MessageOf(err)), http.StatusTemporaryRedirect)
	}
	if err != nil {
		return fail(c, err)
	}

	if err := h.Auth.issue(c, p); err != nil {
		return fail(c, err)
	}
	clearCookie(c, "oauth_state", h.Auth.CookieSecure)
	clearCookie(c, "oauth_next", h.Auth.CookieSecure)

	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}
