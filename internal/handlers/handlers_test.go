package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/review"
	tu "github.com/Windi-Fikriyansyah/freelancehub_be/internal/testutil"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/utils"
)

func googleApp(t *testing.T, user *GoogleUser, fetchErr error) (*fiber.App, *gorm.DB) {
	t.Helper()
	gdb := tu.NewDB(t)
	profiles := profile.NewProfileService(gdb, review.NewReviewService(gdb, nil))
	h := &GoogleOAuthHandler{
		Auth:            NewAuthHandler(profiles, "test-secret", 60, false),
		GoogleClientID:  "client-id",
		GoogleSecret:    "client-secret",
		GoogleRedirect:  "http://localhost:8080/api/auth/google/callback",
		FrontendBaseURL: "http://localhost:3000",
		FetchUser: func(ctx context.Context, cfg *oauth2.Config, code string) (*GoogleUser, error) {
			return user, fetchErr
		},
	}
	app := fiber.New()
	app.Get("/start", h.GoogleStart)
	app.Get("/callback", h.GoogleCallback)
	return app, gdb
}

func callback(t *testing.T, app *fiber.App, query, state string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", "/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})
		req.AddCookie(&http.Cookie{Name: "oauth_next", Value: "/dashboard"})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func cookieValue(resp *http.Response, name string) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func TestGoogleStartSetsState(t *testing.T) {
	app, _ := googleApp(t, nil, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/start?next=/projects", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://accounts.google.com/"), loc)
	state := cookieValue(resp, "oauth_state")
	require.NotEmpty(t, state)
	assert.Contains(t, loc, "state="+state)
	assert.Equal(t, "/projects", cookieValue(resp, "oauth_next"))
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	app, _ := googleApp(t, &GoogleUser{Email: "a@example.com", VerifiedEmail: true}, nil)

	assert.Equal(t, 400, callback(t, app, "code=x", "s1").StatusCode)
	assert.Equal(t, 400, callback(t, app, "code=x&state=s1", "").StatusCode)
	assert.Equal(t, 400, callback(t, app, "code=x&state=s1", "s2").StatusCode)
}

func TestGoogleCallbackCreatesClient(t *testing.T) {
	app, gdb := googleApp(t, &GoogleUser{Email: "New@Example.com", VerifiedEmail: true, Name: "Nia"}, nil)

	resp := callback(t, app, "code=x&state=s1", "s1")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000/dashboard", resp.Header.Get("Location"))

	token := cookieValue(resp, utils.TokenCookie)
	require.NotEmpty(t, token)
	claims, err := utils.ParseJWT("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleClient), claims.Role)

	var p models.Profile
	require.NoError(t, gdb.Where("email = ?", "new@example.com").First(&p).Error)
	assert.Equal(t, "Nia", p.FullName)
	assert.Equal(t, claims.UserID, p.ID.String())
}

func TestGoogleCallbackUnverifiedAndFailures(t *testing.T) {
	app, _ := googleApp(t, &GoogleUser{Email: "a@example.com"}, nil)
	resp := callback(t, app, "code=x&state=s1", "s1")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/auth/login?err=")
	assert.Empty(t, cookieValue(resp, utils.TokenCookie))

	app, _ = googleApp(t, nil, errors.New("exchange failed"))
	assert.Equal(t, 400, callback(t, app, "code=x&state=s1", "s1").StatusCode)
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	errs := validateStruct(ProjectReq{Title: "", SkillsRequired: []string{"Go", ""}})
	require.NotNil(t, errs)
	assert.Equal(t, []string{"This field is required"}, errs["title"])
	assert.Contains(t, errs, "skills_required[1]")

	assert.Nil(t, validateStruct(CreateReviewReq{Rating: 3}))
	errs = validateStruct(CreateReviewReq{Rating: 6})
	assert.Equal(t, []string{"Must be at most 5"}, errs["rating"])
}

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Code]int{
		apperr.CodeInvalid:      400,
		apperr.CodeUnauthorized: 401,
		apperr.CodeForbidden:    403,
		apperr.CodeNotFound:     404,
		apperr.CodeConflict:     409,
		apperr.CodeInternal:     500,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusOf(code), code)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	s := "2026-03-01"
	d, err = parseDate(&s)
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	bad := "01/03/2026"
	_, err = parseDate(&bad)
	assert.Error(t, err)
}
