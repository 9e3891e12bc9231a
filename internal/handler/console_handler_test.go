package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/service"
)

func boolPtr(v bool) *bool { return &v }

func TestConsoleRoutesRequireTeacherSession(t *testing.T) {
	env := setupApp(t, appOptions{})

	for _, route := range []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/api/v1/teacher/console", nil},
		{http.MethodPut, "/api/v1/teacher/mode", dto.TeacherModeRequest{Mode: "free"}},
		{http.MethodPut, "/api/v1/teacher/games", dto.GamePolicyRequest{Enabled: boolPtr(false)}},
		{http.MethodPut, "/api/v1/teacher/secret", dto.SetSecretRequest{Question: "q", Answer: "a"}},
	} {
		resp, _ := env.do(t, route.method, route.path, route.body, "")
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, route.path)
	}
}

func TestConsoleHandlerTeacherMode(t *testing.T) {
	env := setupApp(t, appOptions{})
	token := env.teacherToken(t)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/teacher/console", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status dto.ConsoleStatusResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &status))
	require.Equal(t, models.TeacherModeClass, status.TeacherMode)
	require.Equal(t, env.layout.CompletedDir(), status.CompletedDir)

	resp, envelope = env.do(t, http.MethodPut, "/api/v1/teacher/mode", dto.TeacherModeRequest{Mode: "free"}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(envelope.Data, &status))
	require.Equal(t, models.TeacherModeFreeTime, status.TeacherMode)

	resp, envelope = env.do(t, http.MethodPut, "/api/v1/teacher/mode", dto.TeacherModeRequest{Mode: "recess"}, token)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, envelope.Message, "mode failed oneof")

	settings, err := env.settings.LoadOrInit(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.TeacherModeFreeTime, settings.TeacherMode)
}

func TestConsoleHandlerGamePolicyGatesPlay(t *testing.T) {
	env := setupApp(t, appOptions{})
	token := env.teacherToken(t)

	play := func() dto.PlayPolicyResponse {
		resp, envelope := env.do(t, http.MethodGet, "/api/v1/student/play", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var policy dto.PlayPolicyResponse
		require.NoError(t, json.Unmarshal(envelope.Data, &policy))
		return policy
	}

	// First run: games on, class mode, not allowed in class.
	require.Equal(t, dto.PlayPolicyResponse{Reason: service.PlayReasonClassMode}, play())

	resp, envelope := env.do(t, http.MethodPut, "/api/v1/teacher/games", dto.GamePolicyRequest{AllowInClass: boolPtr(true)}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status dto.ConsoleStatusResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &status))
	require.True(t, status.GamesEnabled)
	require.True(t, status.GamesInClassAllowed)
	require.True(t, play().Allowed)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/teacher/games", dto.GamePolicyRequest{Enabled: boolPtr(false)}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, dto.PlayPolicyResponse{Reason: service.PlayReasonDisabled}, play())

	resp, _ = env.do(t, http.MethodPut, "/api/v1/teacher/games", dto.GamePolicyRequest{Enabled: boolPtr(true), AllowInClass: boolPtr(false)}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPut, "/api/v1/teacher/mode", dto.TeacherModeRequest{Mode: models.TeacherModeFreeTime}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, play().Allowed)

	resp, envelope = env.do(t, http.MethodPut, "/api/v1/teacher/games", map[string]interface{}{}, token)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, service.ErrEmptyGamePolicy.Error(), envelope.Message)
}

func TestConsoleHandlerSecretRecovery(t *testing.T) {
	env := setupApp(t, appOptions{})

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/teacher/recovery", nil, "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "secret question not set", envelope.Message)

	token := env.teacherToken(t)
	resp, envelope = env.do(t, http.MethodPut, "/api/v1/teacher/secret", dto.SetSecretRequest{Question: "  ", Answer: "x"}, token)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, service.ErrBlankSecret.Error(), envelope.Message)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/teacher/secret", dto.SetSecretRequest{Question: "First pet?", Answer: " Biscuit "}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/recovery", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var question dto.SecretQuestionResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &question))
	require.Equal(t, "First pet?", question.Question)

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/teacher/recovery", dto.SecretRecoveryRequest{Answer: "biscuit"}, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "incorrect secret answer", envelope.Message)

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/teacher/recovery", dto.SecretRecoveryRequest{Answer: "Biscuit\n"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var session dto.TeacherSessionResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &session))
	require.NotEmpty(t, session.Token)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/teacher/console", nil, session.Token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
