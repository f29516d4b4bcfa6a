package project

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	tu "github.com/Windi-Fikriyansyah/freelancehub_be/internal/testutil"
)

func TestCreateValidates(t *testing.T) {
	gdb := tu.NewDB(t)
	svc := NewProjectService(gdb)
	client := tu.CreateProfile(t, gdb, models.RoleClient, "clara")
	ctx := context.Background()

	_, err := svc.Create(ctx, client.ID, Input{Title: "  ", SkillsRequired: []string{"Go"}})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	_, err = svc.Create(ctx, client.ID, Input{Title: "API", SkillsRequired: []string{" "}})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	_, err = svc.Create(ctx, client.ID, Input{Title: "API", SkillsRequired: []string{"Go"}, BudgetMin: budget(10), BudgetMax: budget(5)})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	p, err := svc.Create(ctx, client.ID, Input{Title: "API", SkillsRequired: []string{"Go"}, BudgetMax: budget(800)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectOpen, p.Status)

	d, err := svc.Create(ctx, client.ID, Input{Title: "Later", SkillsRequired: []string{"Go"}, Draft: true})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectDraft, d.Status)
}

func TestLifecycle(t *testing.T) {
	gdb := tu.NewDB(t)
	svc := NewProjectService(gdb)
	client := tu.CreateProfile(t, gdb, models.RoleClient, "clara")
	stranger := tu.CreateProfile(t, gdb, models.RoleClient, "sam")
	ctx := context.Background()

	d, err := svc.Create(ctx, client.ID, Input{Title: "Draft", SkillsRequired: []string{"Go"}, Draft: true})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.Nil, d.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound), "drafts hidden from the public")
	_, err = svc.Get(ctx, client.ID, d.ID)
	assert.NoError(t, err)

	_, err = svc.Publish(ctx, stranger.ID, d.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	p, err := svc.Publish(ctx, client.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectOpen, p.Status)

	p, err = svc.Update(ctx, client.ID, d.ID, Input{Title: "Renamed", SkillsRequired: []string{"Rust"}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)

	var stored models.Project
	require.NoError(t, gdb.First(&stored, "id = ?", d.ID).Error)
	assert.Equal(t, []string{"Rust"}, []string(stored.SkillsRequired))

	p, err = svc.Cancel(ctx, client.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCancelled, p.Status)

	_, err = svc.Update(ctx, client.ID, d.ID, Input{Title: "Again", SkillsRequired: []string{"Go"}})
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

	_, err = svc.Publish(ctx, client.ID, d.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

	mine, err := svc.ListMine(ctx, client.ID, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestBrowseAndSkills(t *testing.T) {
	gdb := tu.NewDB(t)
	svc := NewProjectService(gdb)
	client := tu.CreateProfile(t, gdb, models.RoleClient, "clara")
	ctx := context.Background()

	mk := func(title string, max int64, skills ...string) {
		_, err := svc.Create(ctx, client.ID, Input{Title: title, BudgetMax: budget(max), SkillsRequired: skills})
		require.NoError(t, err)
	}
	mk("Logo", 300, "Figma")
	mk("Shop", 3000, "React", "Go")
	mk("Platform", 9000, "Go", "Kubernetes")
	_, err := svc.Create(ctx, client.ID, Input{Title: "Hidden", SkillsRequired: []string{"Cobol"}, Draft: true})
	require.NoError(t, err)

	all, meta, err := svc.Browse(ctx, Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, Meta{Page: 1, Limit: 2, TotalItems: 3, TotalPages: 2}, meta)

	page2, _, err := svc.Browse(ctx, Filter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	goProjects, meta, err := svc.Browse(ctx, Filter{Skill: "go"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.TotalItems)
	assert.Len(t, goProjects, 2)

	big, _, err := svc.Browse(ctx, Filter{Budget: BudgetOver5k}, 1, 20)
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, "Platform", big[0].Title)

	_, _, err = svc.Browse(ctx, Filter{Budget: "huge"}, 1, 20)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	skills, err := svc.Skills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Figma", "Go", "Kubernetes", "React"}, skills)
}

func TestPublicReadsHideClientContact(t *testing.T) {
	gdb := tu.NewDB(t)
	svc := NewProjectService(gdb)
	client := tu.CreateProfile(t, gdb, models.RoleClient, "clara")
	require.NoError(t, gdb.Model(client).Update("phone", "+62 812 0000").Error)
	ctx := context.Background()

	p, err := svc.Create(ctx, client.ID, Input{Title: "Shop", SkillsRequired: []string{"Go"}})
	require.NoError(t, err)

	got, err := svc.Get(ctx, uuid.Nil, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Client)
	assert.Equal(t, "clara", got.Client.FullName)
	assert.Empty(t, got.Client.Email)
	assert.Empty(t, got.Client.Phone)

	listed, _, err := svc.Browse(ctx, Filter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Client)
	assert.Empty(t, listed[0].Client.Email)
	assert.Empty(t, listed[0].Client.Phone)
}
