package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/profile"
)

const maxAvatarBytes = 2 * 1024 * 1024

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type ProfileHandler struct {
	Profiles  *profile.ProfileService
	UploadDir string
	PublicURL func(path string) string
}

func NewProfileHandler(profiles *profile.ProfileService, uploadDir string, publicURL func(string) string) *ProfileHandler {
	if publicURL == nil {
		publicURL = func(p string) string { return p }
	}
	return &ProfileHandler{Profiles: profiles, UploadDir: uploadDir, PublicURL: publicURL}
}

type UpdateProfileReq struct {
	FullName   *string  `json:"full_name" validate:"omitempty,max=120"`
	Bio        *string  `json:"bio" validate:"omitempty,max=2000"`
	Location   *string  `json:"location" validate:"omitempty,max=120"`
	Phone      *string  `json:"phone" validate:"omitempty,max=30"`
	Website    *string  `json:"website" validate:"omitempty,max=300"`
	HourlyRate *int64   `json:"hourly_rate" validate:"omitempty,gte=0"`
	Skills     []string `json:"skills" validate:"omitempty,max=30,dive,max=50"`
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	var req UpdateProfileReq
	if handled, err := bind(c, &req); handled {
		return err
	}

	p, err := h.Profiles.Update(c.UserContext(), uid, profile.UpdateInput{
		FullName:   req.FullName,
		Bio:        req.Bio,
		Location:   req.Location,
		Phone:      req.Phone,
		Website:    req.Website,
		HourlyRate: req.HourlyRate,
		Skills:     req.Skills,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

// UploadAvatar stores a multipart "avatar" image and points the profile at it.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, apperr.Invalid("File avatar is required"))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExts[ext] {
		return fail(c, apperr.Invalid("Avatar must be jpg, png or webp"))
	}
	if file.Size <= 0 || file.Size > maxAvatarBytes {
		return fail(c, apperr.Invalid("Avatar must be at most 2MB"))
	}

	dir := filepath.Join(h.UploadDir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(c, apperr.Internal(err, "create upload dir"))
	}
	filename := fmt.Sprintf("%s_%s%s", uid, uuid.NewString()[:8], ext)
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return fail(c, apperr.Internal(err, "save avatar"))
	}

	p, err := h.Profiles.SetAvatar(c.UserContext(), uid, h.PublicURL("/uploads/avatars/"+filename))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *ProfileHandler) Public(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Profiles.Public(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

// AdminList pages through every profile.
func (h *ProfileHandler) AdminList(c *fiber.Ctx) error {
	profiles, meta, err := h.Profiles.List(c.UserContext(), c.Query("role"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return okMeta(c, profiles, meta)
}
