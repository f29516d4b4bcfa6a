package profile

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/project"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/review"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/utils"
)

var ErrEmailTaken = apperr.Conflict("Email is already registered")

type ProfileService struct {
	DB      *gorm.DB
	Reviews *review.ReviewService
}

func NewProfileService(db *gorm.DB, reviews *review.ReviewService) *ProfileService {
	return &ProfileService{DB: db, Reviews: reviews}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role != models.RoleClient && in.Role != models.RoleFreelancer {
		return nil, apperr.Invalid("Role must be client or freelancer")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Invalid("Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	p := models.Profile{
		Email:    email,
		Password: hash,
		FullName: strings.TrimSpace(in.FullName),
		Role:     in.Role,
		IsActive: true,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Profile{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return apperr.Internal(err, "check email")
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&p).Error; err != nil {
			return apperr.Internal(err, "create profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var errBadCredentials = apperr.New(apperr.CodeUnauthorized, "Invalid email or password")

func (s *ProfileService) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var p models.Profile
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, apperr.Internal(err, "load profile")
	}
	if !utils.CheckPassword(p.Password, password) {
		return nil, errBadCredentials
	}
	if !p.IsActive {
		return nil, apperr.Forbidden("Account is inactive")
	}
	return &p, nil
}

// GoogleSignIn finds the profile for a verified Google email, creating a
// client profile on first sign-in.
func (s *ProfileService) GoogleSignIn(ctx context.Context, email, name, picture string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Invalid("Google account has no email")
	}

	var p models.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&p).Error
		if err == nil {
			if p.AvatarURL == "" && picture != "" {
				p.AvatarURL = picture
				return tx.Model(&p).Update("avatar_url", picture).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Internal(err, "load profile")
		}

		// the account has no password login; store an unguessable hash
		hash, err := utils.HashPassword(randomSecret())
		if err != nil {
			return apperr.Internal(err, "hash password")
		}
		p = models.Profile{
			Email:     email,
			Password:  hash,
			FullName:  strings.TrimSpace(name),
			Role:      models.RoleClient,
			IsActive:  true,
			AvatarURL: picture,
		}
		if err := tx.Create(&p).Error; err != nil {
			return apperr.Internal(err, "create profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperr.Forbidden("Account is inactive")
	}
	return &p, nil
}

func randomSecret() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Profile not found")
		}
		return nil, apperr.Internal(err, "load profile")
	}
	return &p, nil
}

type PublicProfile struct {
	*models.Profile
	Reviews           []models.Review  `json:"reviews"`
	AverageRating     float64          `json:"average_rating"`
	ReviewCount       int              `json:"review_count"`
	CompletedProjects []models.Project `json:"completed_projects,omitempty"`
}

// Public assembles the profile page: reviews received and, for clients,
// their completed projects.
func (s *ProfileService) Public(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.Reviews.Received(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range reviews {
		reviews[i].Reviewer = reviews[i].Reviewer.PublicView()
	}
	out := &PublicProfile{
		Profile:       p.PublicView(),
		Reviews:       reviews,
		AverageRating: review.Average(reviews),
		ReviewCount:   len(reviews),
	}
	if p.Role == models.RoleClient {
		if err := s.DB.WithContext(ctx).
			Where("client_id = ? AND status = ?", id, models.ProjectCompleted).
			Order("updated_at DESC").
			Find(&out.CompletedProjects).Error; err != nil {
			return nil, apperr.Internal(err, "list completed projects")
		}
	}
	return out, nil
}

// UpdateInput holds optional fields; nil leaves a field unchanged.
type UpdateInput struct {
	FullName   *string
	Bio        *string
	Location   *string
	Phone      *string
	Website    *string
	HourlyRate *int64
	Skills     []string
}

// Update applies a self-edit. Skills and hourly rate are ignored for
// non-freelancers.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	set := func(col string, v *string, dst *string) {
		if v == nil {
			return
		}
		*dst = strings.TrimSpace(*v)
		updates[col] = *dst
	}
	set("full_name", in.FullName, &p.FullName)
	set("bio", in.Bio, &p.Bio)
	set("location", in.Location, &p.Location)
	set("phone", in.Phone, &p.Phone)
	set("website", in.Website, &p.Website)

	if in.FullName != nil && p.FullName == "" {
		return nil, apperr.Invalid("Full name cannot be empty")
	}

	if p.Role == models.RoleFreelancer {
		if in.HourlyRate != nil {
			if *in.HourlyRate < 0 {
				return nil, apperr.Invalid("Hourly rate cannot be negative")
			}
			p.HourlyRate = in.HourlyRate
			updates["hourly_rate"] = *in.HourlyRate
		}
		if in.Skills != nil {
			p.Skills = project.CleanSkills(in.Skills)
			updates["skills"] = p.Skills
		}
	}

	if len(updates) == 0 {
		return p, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err, "update profile")
	}
	return p, nil
}

func (s *ProfileService) SetAvatar(ctx context.Context, id uuid.UUID, url string) (*models.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("avatar_url", url).Error; err != nil {
		return nil, apperr.Internal(err, "update avatar")
	}
	p.AvatarURL = url
	return p, nil
}

// List is the admin directory, newest first, optionally filtered by role.
func (s *ProfileService) List(ctx context.Context, role string, page, limit int) ([]models.Profile, project.Meta, error) {
	page, limit = project.Normalize(page, limit)
	q := s.DB.WithContext(ctx).Model(&models.Profile{})
	if role != "" {
		if !models.Role(role).Valid() {
			return nil, project.Meta{}, apperr.Invalid("Unknown role")
		}
		q = q.Where("role = ?", role)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, project.Meta{}, apperr.Internal(err, "count profiles")
	}
	var profiles []models.Profile
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&profiles).Error; err != nil {
		return nil, project.Meta{}, apperr.Internal(err, "list profiles")
	}
	return profiles, project.NewMeta(page, limit, total), nil
}
