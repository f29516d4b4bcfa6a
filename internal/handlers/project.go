package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/project"
)

type ProjectHandler struct {
	Projects *project.ProjectService
}

func NewProjectHandler(projects *project.ProjectService) *ProjectHandler {
	return &ProjectHandler{Projects: projects}
}

type ProjectReq struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=10000"`
	BudgetMin      *int64   `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax      *int64   `json:"budget_max" validate:"omitempty,gte=0"`
	SkillsRequired []string `json:"skills_required" validate:"required,min=1,max=30,dive,required,max=50"`
	Deadline       *string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Draft          bool     `json:"draft"`
}

func (r ProjectReq) input() (project.Input, error) {
	deadline, err := parseDate(r.Deadline)
	if err != nil {
		return project.Input{}, apperr.Invalid("Invalid deadline")
	}
	return project.Input{
		Title:          r.Title,
		Description:    r.Description,
		BudgetMin:      r.BudgetMin,
		BudgetMax:      r.BudgetMax,
		SkillsRequired: r.SkillsRequired,
		Deadline:       deadline,
		Draft:          r.Draft,
	}, nil
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	var req ProjectReq
	if handled, err := bind(c, &req); handled {
		return err
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	p, err := h.Projects.Create(c.UserContext(), uid, in)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Project created", p)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req ProjectReq
	if handled, err := bind(c, &req); handled {
		return err
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	p, err := h.Projects.Update(c.UserContext(), uid, id, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *ProjectHandler) Publish(c *fiber.Ctx) error {
	return h.move(c, h.Projects.Publish)
}

func (h *ProjectHandler) Cancel(c *fiber.Ctx) error {
	return h.move(c, h.Projects.Cancel)
}

type projectMove func(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error)

func (h *ProjectHandler) move(c *fiber.Ctx, fn projectMove) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := fn(c.UserContext(), uid, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Projects.Get(c.UserContext(), viewerID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *ProjectHandler) Mine(c *fiber.Ctx) error {
	uid, _, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projects, err := h.Projects.ListMine(c.UserContext(), uid, 0)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, projects)
}

// Browse lists open projects. Query: q, budget, skill, page, limit.
func (h *ProjectHandler) Browse(c *fiber.Ctx) error {
	f := project.Filter{
		Search: c.Query("q"),
		Budget: c.Query("budget"),
		Skill:  c.Query("skill"),
	}
	projects, meta, err := h.Projects.Browse(c.UserContext(), f, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return okMeta(c, projects, meta)
}

func (h *ProjectHandler) Skills(c *fiber.Ctx) error {
	skills, err := h.Projects.Skills(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, skills)
}
