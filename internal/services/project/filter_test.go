package project

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

func budget(v int64) *int64 { return &v }

func TestFilterBudgetBuckets(t *testing.T) {
	cases := []struct {
		max    *int64
		bucket string
		want   bool
	}{
		{nil, BudgetUnder1k, true},
		{budget(999), BudgetUnder1k, true},
		{budget(1000), BudgetUnder1k, false},
		{budget(1000), Budget1kTo5k, true},
		{budget(5000), Budget1kTo5k, true},
		{budget(5001), Budget1kTo5k, false},
		{budget(5000), BudgetOver5k, false},
		{budget(5001), BudgetOver5k, true},
		{nil, BudgetOver5k, false},
		{budget(42), BudgetAll, true},
		{budget(42), "", true},
	}
	for _, tc := range cases {
		p := &models.Project{BudgetMax: tc.max}
		assert.Equal(t, tc.want, Filter{Budget: tc.bucket}.Match(p), "max=%v bucket=%s", tc.max, tc.bucket)
	}
}

func TestFilterSearch(t *testing.T) {
	p := &models.Project{
		Title:          "Mobile App",
		Description:    "Build a delivery tracker",
		SkillsRequired: []string{"Flutter", "Firebase"},
	}

	assert.True(t, Filter{Search: "mobile"}.Match(p))
	assert.True(t, Filter{Search: "TRACKER"}.Match(p))
	assert.True(t, Filter{Search: "fire"}.Match(p))
	assert.False(t, Filter{Search: "django"}.Match(p))

	assert.True(t, Filter{Skill: "flut"}.Match(p))
	assert.False(t, Filter{Skill: "app"}.Match(p), "skill filter ignores title")
	assert.False(t, Filter{Search: "mobile", Skill: "react"}.Match(p))
}

func TestMetaAndNormalize(t *testing.T) {
	assert.Equal(t, Meta{Page: 2, Limit: 10, TotalItems: 21, TotalPages: 3}, NewMeta(2, 10, 21))
	assert.Equal(t, 0, NewMeta(1, 10, 0).TotalPages)

	page, limit := Normalize(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	_, limit = Normalize(1, 500)
	assert.Equal(t, 100, limit)
}

func TestCleanSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "React"}, CleanSkills([]string{" Go ", "", "go", "React"}))
}
