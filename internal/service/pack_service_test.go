package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

func TestPackServiceCreateSanitizesAndAppliesPolicy(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := NewPackService(env.packs, env.settings, validator.New(), zerolog.Nop())
	ctx := context.Background()

	_, err := env.settings.Update(ctx, func(s *models.Settings) error {
		s.Game.Enabled = true
		s.Game.GamesInClassAllowed = true
		return nil
	})
	require.NoError(t, err)

	response, err := svc.Create(ctx, dto.PackCreateRequest{
		SchoolID: "north",
		ClassID:  "7B",
		Assignments: []dto.PackAssignmentRequest{{
			ID:             "hw-1",
			Title:          "<b>Plants</b> & light",
			InstructionsMD: "Read <script>alert(1)</script>chapter 3.\n- Question 1",
			AllowGames:     false,
			AllowAIPremark: true,
		}},
	})
	require.NoError(t, err)
	require.True(t, response.GamesDisabled)
	require.True(t, strings.HasPrefix(filepath.Base(response.Path), "homework_pack_7B_"))

	assignment := response.Pack.Assignments[0]
	require.Equal(t, "Plants & light", assignment.Title)
	require.NotContains(t, assignment.InstructionsMD, "<script>")
	require.Contains(t, assignment.InstructionsMD, "chapter 3.\n- Question 1")
	require.True(t, assignment.AllowAIPremark)

	settings, err := env.settings.LoadOrInit(ctx)
	require.NoError(t, err)
	require.False(t, settings.Game.Enabled)
	require.False(t, settings.Game.GamesInClassAllowed)
}

func TestPackServiceCreateKeepsGamesWhenAllowed(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := NewPackService(env.packs, env.settings, nil, zerolog.Nop())
	ctx := context.Background()

	before, err := env.settings.LoadOrInit(ctx)
	require.NoError(t, err)

	response, err := svc.Create(ctx, dto.PackCreateRequest{
		Assignments: []dto.PackAssignmentRequest{{ID: "hw-1", Title: "Games ok", AllowGames: true}},
	})
	require.NoError(t, err)
	require.False(t, response.GamesDisabled)
	require.Equal(t, "school", response.Pack.SchoolID)
	require.Equal(t, before.Student.ClassID, response.Pack.ClassID)

	after, err := env.settings.LoadOrInit(ctx)
	require.NoError(t, err)
	require.Equal(t, before.Game, after.Game)
}

func TestPackServiceCreateRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := NewPackService(env.packs, env.settings, nil, zerolog.Nop())
	ctx := context.Background()

	var validationErrors validator.ValidationErrors
	_, err := svc.Create(ctx, dto.PackCreateRequest{ClassID: "7B"})
	require.ErrorAs(t, err, &validationErrors)

	_, err = svc.Create(ctx, dto.PackCreateRequest{Assignments: []dto.PackAssignmentRequest{{ID: "hw-1"}}})
	require.ErrorAs(t, err, &validationErrors)

	_, err = svc.Create(ctx, dto.PackCreateRequest{Assignments: []dto.PackAssignmentRequest{
		{ID: "hw-1", Title: "A"},
		{ID: "hw-1", Title: "B"},
	}})
	require.ErrorIs(t, err, ErrInvalidPack)
}

func TestPackServiceLatestTemplateAndImport(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := NewPackService(env.packs, env.settings, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Latest(ctx)
	require.ErrorIs(t, err, ErrNoPack)

	template, err := svc.Template(ctx, dto.PackTemplateRequest{ClassID: "7B"})
	require.NoError(t, err)
	require.Equal(t, repository.PackTemplateFileName, filepath.Base(template.Path))
	require.Len(t, template.Pack.Assignments, 1)

	source := filepath.Join(t.TempDir(), "from_usb.json")
	data, err := os.ReadFile(template.Path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(source, data, 0o644))

	imported, err := svc.Import(ctx, dto.PackImportRequest{Path: source})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(env.layout.AssignedDir(), "homework_pack_import.json"), imported.Path)
	require.True(t, imported.GamesDisabled)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, template.Pack.Assignments[0].ID, latest.Pack.Assignments[0].ID)

	_, err = svc.Import(ctx, dto.PackImportRequest{})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
