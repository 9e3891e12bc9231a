package handler_test

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

const scenarioAnswer = "Photosynthesis converts light into chemical energy."

func TestSubmissionHandlerExportAndList(t *testing.T) {
	env := setupApp(t, appOptions{})

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{
		AssignmentID: "hw-1",
		AnswersText:  scenarioAnswer,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)

	var exported dto.SubmissionExportResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &exported))
	require.False(t, exported.Replaced)
	require.Equal(t, 3, exported.Events)
	require.Len(t, exported.FinalHash, 64)
	require.FileExists(t, exported.Path)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/teacher/submissions", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := env.teacherToken(t)
	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions?assignment_id=hw-1", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rows []dto.SubmissionSummaryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Len(t, rows, 1)
	require.Equal(t, models.DefaultStudentID, rows[0].StudentID)
	require.Equal(t, 60, *rows[0].Score)
	require.Equal(t, exported.FinalHash, rows[0].FinalHash)
	require.Equal(t, models.IntegrityUnverified, rows[0].IntegrityStatus)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions?assignment_id=other", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Empty(t, rows)
}

func TestSubmissionHandlerExportValidation(t *testing.T) {
	env := setupApp(t, appOptions{})

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, envelope.Success)
	require.Contains(t, envelope.Message, "assignmentid")

	resp, _ = env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{AssignmentID: "../escape"}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{
		AssignmentID: "hw-1",
		Attachments:  []string{env.layout.Base + "/missing.pdf"},
	}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, envelope.Message, "attachment not found")
}

func TestSubmissionHandlerRejectsOverwriteWhenConfigured(t *testing.T) {
	env := setupApp(t, appOptions{rejectOverwrite: true})
	request := dto.SubmissionExportRequest{AssignmentID: "hw-1", AnswersText: scenarioAnswer}

	resp, _ := env.do(t, http.MethodPost, "/api/v1/student/submissions", request, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", request, "")
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Contains(t, envelope.Message, "already exported")
}

func TestSubmissionHandlerVerify(t *testing.T) {
	env := setupApp(t, appOptions{})
	token := env.teacherToken(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-1/student-id/verify", nil, token)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{AssignmentID: "hw-1", AnswersText: scenarioAnswer}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var exported dto.SubmissionExportResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &exported))

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-1/student-id/verify", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var verification dto.VerificationResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &verification))
	require.Equal(t, models.IntegrityIntact, verification.Status)
	require.Equal(t, exported.FinalHash, verification.FinalHash)

	raw, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	tampered := strings.Replace(string(raw), "chemical energy", "chemical magic", -1)
	require.NotEqual(t, string(raw), tampered)
	require.NoError(t, os.WriteFile(exported.Path, []byte(tampered), 0o644))

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-1/student-id/verify", nil, token)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.False(t, envelope.Success)
	require.Equal(t, "submission looks altered", envelope.Message)
	require.NoError(t, json.Unmarshal(envelope.Data, &verification))
	require.Equal(t, models.IntegrityAltered, verification.Status)
	require.NotEmpty(t, verification.Failure)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rows []dto.SubmissionSummaryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Len(t, rows, 1)
	require.Equal(t, models.IntegrityAltered, rows[0].IntegrityStatus)
}

func TestSubmissionHandlerReindex(t *testing.T) {
	env := setupApp(t, appOptions{})
	token := env.teacherToken(t)

	for _, id := range []string{"hw-1", "hw-2"} {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{AssignmentID: id, AnswersText: scenarioAnswer}, "")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}
	require.NoError(t, os.WriteFile(env.layout.CompletedDir()+"/submission_broken_x.json", []byte("{"), 0o644))

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/teacher/submissions/reindex", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.ReindexResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	require.Equal(t, 2, result.Indexed)
	require.Equal(t, 2, result.Intact)
	require.Zero(t, result.Altered)
	require.Equal(t, 1, result.Skipped)
}

func TestSubmissionFileMatchesSchema(t *testing.T) {
	env := setupApp(t, appOptions{})

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{
		AssignmentID: "hw-schema",
		AnswersText:  scenarioAnswer,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var exported dto.SubmissionExportResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &exported))

	raw, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	var document interface{}
	require.NoError(t, json.Unmarshal(raw, &document))

	schema, err := repository.CompileSubmissionSchema()
	require.NoError(t, err)
	require.NoError(t, schema.Validate(document))

	// Files written before the event chain existed carry neither field.
	delete(document.(map[string]interface{}), "final_hash")
	delete(document.(map[string]interface{}), "events")
	require.NoError(t, schema.Validate(document))

	delete(document.(map[string]interface{}), "student_id")
	require.Error(t, schema.Validate(document))
}

func TestSubmissionHandlerVerifyReportsMissingChain(t *testing.T) {
	env := setupApp(t, appOptions{})
	token := env.teacherToken(t)

	legacy := `{"version": "0.1.0", "assignment_id": "hw-old", "student_id": "s1", "student_name": "Sam", "submitted_at": "2024-03-01T09:00:00Z", "answers_text": "old answer"}`
	require.NoError(t, os.WriteFile(env.layout.CompletedDir()+"/submission_hw-old_s1.json", []byte(legacy), 0o644))

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-old/s1/verify", nil, token)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "submission cannot be verified", envelope.Message)
	var verification dto.VerificationResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &verification))
	require.Equal(t, models.IntegrityUnverifiable, verification.Status)
	require.Equal(t, "empty_chain", verification.Failure)

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/teacher/submissions/reindex", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result dto.ReindexResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	require.Equal(t, dto.ReindexResponse{Indexed: 1, Unverifiable: 1}, result)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rows []dto.SubmissionSummaryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Len(t, rows, 1)
	require.Equal(t, models.IntegrityUnverifiable, rows[0].IntegrityStatus)
}

func TestSubmissionHandlerExportUsesSeededProfile(t *testing.T) {
	env := setupApp(t, appOptions{seededProfile: true})
	token := env.teacherToken(t)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/student/submissions", dto.SubmissionExportRequest{AssignmentID: "hw-1", AnswersText: scenarioAnswer}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var exported dto.SubmissionExportResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &exported))
	require.Contains(t, exported.Path, "student-id-placeholder")

	resp, _ = env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-1/student-id/verify", nil, token)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/teacher/submissions/hw-1/student-id-placeholder/verify", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var verification dto.VerificationResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &verification))
	require.Equal(t, models.IntegrityIntact, verification.Status)
}
