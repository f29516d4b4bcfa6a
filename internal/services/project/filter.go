package project

import (
	"math"
	"strings"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

// Budget buckets on budget_max.
const (
	BudgetAll     = "all"
	BudgetUnder1k = "under-1000"
	Budget1kTo5k  = "1000-5000"
	BudgetOver5k  = "over-5000"
)

type Filter struct {
	Search string
	Budget string
	Skill  string
}

func ValidBudget(b string) bool {
	switch b {
	case "", BudgetAll, BudgetUnder1k, Budget1kTo5k, BudgetOver5k:
		return true
	}
	return false
}

// Match applies search, budget and skill filters. Text matching is a
// case-insensitive substring test.
func (f Filter) Match(p *models.Project) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!anySkill(p.SkillsRequired, q) {
			return false
		}
	}

	var max int64
	if p.BudgetMax != nil {
		max = *p.BudgetMax
	}
	switch f.Budget {
	case BudgetUnder1k:
		if max >= 1000 {
			return false
		}
	case Budget1kTo5k:
		if max < 1000 || max > 5000 {
			return false
		}
	case BudgetOver5k:
		if max <= 5000 {
			return false
		}
	}

	if s := strings.ToLower(strings.TrimSpace(f.Skill)); s != "" && !anySkill(p.SkillsRequired, s) {
		return false
	}
	return true
}

func anySkill(skills []string, needle string) bool {
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func NewMeta(page, limit int, total int64) Meta {
	return Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// Normalize clamps page and limit the way list endpoints expect.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
