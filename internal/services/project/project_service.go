package project

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

type ProjectService struct {
	DB *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{DB: db}
}

type Input struct {
	Title          string
	Description    string
	BudgetMin      *int64
	BudgetMax      *int64
	SkillsRequired []string
	Deadline       *time.Time
	Draft          bool
}

func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return apperr.Invalid("Title is required")
	}
	if in.BudgetMin != nil && *in.BudgetMin < 0 || in.BudgetMax != nil && *in.BudgetMax < 0 {
		return apperr.Invalid("Budget cannot be negative")
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
		return apperr.Invalid("Minimum budget cannot exceed maximum budget")
	}
	in.SkillsRequired = CleanSkills(in.SkillsRequired)
	if len(in.SkillsRequired) == 0 {
		return apperr.Invalid("At least one skill is required")
	}
	return nil
}

// CleanSkills trims, drops empties and removes case-insensitive duplicates.
func CleanSkills(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func (s *ProjectService) Create(ctx context.Context, clientID uuid.UUID, in Input) (*models.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	status := models.ProjectOpen
	if in.Draft {
		status = models.ProjectDraft
	}

	p := models.Project{
		ClientID:       clientID,
		Title:          in.Title,
		Description:    in.Description,
		BudgetMin:      in.BudgetMin,
		BudgetMax:      in.BudgetMax,
		SkillsRequired: in.SkillsRequired,
		Deadline:       in.Deadline,
		Status:         status,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Internal(err, "create project")
	}
	return &p, nil
}

func (s *ProjectService) owned(tx *gorm.DB, actorID, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := tx.First(&p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, apperr.Internal(err, "load project")
	}
	if p.ClientID != actorID {
		return nil, apperr.Forbidden("Only the project owner can change it")
	}
	return &p, nil
}

// Update replaces the editable fields while the project is draft or open.
func (s *ProjectService) Update(ctx context.Context, actorID, projectID uuid.UUID, in Input) (*models.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var p *models.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = s.owned(tx, actorID, projectID); err != nil {
			return err
		}
		if !p.Editable() {
			return apperr.Conflict("Project can no longer be edited")
		}

		p.Title = in.Title
		p.Description = in.Description
		p.BudgetMin = in.BudgetMin
		p.BudgetMax = in.BudgetMax
		p.SkillsRequired = in.SkillsRequired
		p.Deadline = in.Deadline
		res := tx.Model(&models.Project{}).
			Where("id = ? AND status IN ?", p.ID, []models.ProjectStatus{models.ProjectDraft, models.ProjectOpen}).
			Updates(map[string]any{
				"title":           p.Title,
				"description":     p.Description,
				"budget_min":      p.BudgetMin,
				"budget_max":      p.BudgetMax,
				"skills_required": p.SkillsRequired,
				"deadline":        p.Deadline,
			})
		if res.Error != nil {
			return apperr.Internal(res.Error, "update project")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Project was changed by another request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Publish(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error) {
	return s.move(ctx, actorID, projectID, models.ProjectOpen, models.ProjectDraft)
}

func (s *ProjectService) Cancel(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error) {
	return s.move(ctx, actorID, projectID, models.ProjectCancelled, models.ProjectDraft, models.ProjectOpen)
}

func (s *ProjectService) move(ctx context.Context, actorID, projectID uuid.UUID, to models.ProjectStatus, from ...models.ProjectStatus) (*models.Project, error) {
	var p *models.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = s.owned(tx, actorID, projectID); err != nil {
			return err
		}
		if p.Status == to {
			return nil
		}
		res := tx.Model(&models.Project{}).
			Where("id = ? AND status IN ?", p.ID, from).
			Update("status", to)
		if res.Error != nil {
			return apperr.Internal(res.Error, "update project status")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Project cannot move from " + string(p.Status) + " to " + string(to))
		}
		p.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a project with its client. Drafts are visible to their owner only.
func (s *ProjectService) Get(ctx context.Context, viewerID uuid.UUID, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).Preload("Client").First(&p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, apperr.Internal(err, "load project")
	}
	if p.Status == models.ProjectDraft && p.ClientID != viewerID {
		return nil, apperr.NotFound("Project not found")
	}
	p.Client = p.Client.PublicView()
	return &p, nil
}

func (s *ProjectService) ListMine(ctx context.Context, clientID uuid.UUID, limit int) ([]models.Project, error) {
	q := s.DB.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, apperr.Internal(err, "list projects")
	}
	return projects, nil
}

func (s *ProjectService) openProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.DB.WithContext(ctx).Preload("Client").
		Where("status = ?", models.ProjectOpen).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, apperr.Internal(err, "list open projects")
	}
	for i := range projects {
		projects[i].Client = projects[i].Client.PublicView()
	}
	return projects, nil
}

// Browse filters open projects in memory and returns one page, newest first.
func (s *ProjectService) Browse(ctx context.Context, f Filter, page, limit int) ([]models.Project, Meta, error) {
	page, limit = Normalize(page, limit)
	if !ValidBudget(f.Budget) {
		return nil, Meta{}, apperr.Invalid("Unknown budget filter")
	}

	all, err := s.openProjects(ctx)
	if err != nil {
		return nil, Meta{}, err
	}

	matched := make([]models.Project, 0, len(all))
	for i := range all {
		if f.Match(&all[i]) {
			matched = append(matched, all[i])
		}
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], NewMeta(page, limit, total), nil
}

// Skills lists distinct skills across open projects, sorted case-insensitively.
func (s *ProjectService) Skills(ctx context.Context) ([]string, error) {
	all, err := s.openProjects(ctx)
	if err != nil {
		return nil, err
	}
	var skills []string
	for _, p := range all {
		skills = append(skills, p.SkillsRequired...)
	}
	skills = CleanSkills(skills)
	sort.Slice(skills, func(i, j int) bool {
		return strings.ToLower(skills[i]) < strings.ToLower(skills[j])
	})
	return skills, nil
}

// Recent returns the newest open projects.
func (s *ProjectService) Recent(ctx context.Context, limit int) ([]models.Project, error) {
	var projects []models.Project
	if err := s.DB.WithContext(ctx).Preload("Client").
		Where("status = ?", models.ProjectOpen).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, apperr.Internal(err, "list recent projects")
	}
	return projects, nil
}
