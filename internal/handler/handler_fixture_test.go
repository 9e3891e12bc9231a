package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/chatty-edu-api/internal/config"
	"github.com/noah-isme/chatty-edu-api/internal/handler"
	"github.com/noah-isme/chatty-edu-api/internal/middleware"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
	"github.com/noah-isme/chatty-edu-api/internal/router"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/pkg/ai"
)

const testSecret = "handler-secret"

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type echoModel struct{}

func (echoModel) Complete(_ context.Context, input string) (string, error) {
	return "You asked: " + input, nil
}

type appEnv struct {
	app      *fiber.App
	layout   repository.Layout
	store    repository.SubmissionStore
	settings repository.SettingsStore
}

type appOptions struct {
	rejectOverwrite bool
	// seededProfile keeps the first-run placeholder student profile instead
	// of clearing it, so exports carry "student-id-placeholder".
	seededProfile bool
}

func setupApp(t *testing.T, opts appOptions) *appEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	layout := repository.NewLayout(t.TempDir())
	require.NoError(t, layout.EnsureFolders())

	store, err := repository.NewSubmissionStore(layout.CompletedDir(), repository.SubmissionStoreOptions{RejectOverwrite: opts.rejectOverwrite}, logger)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SubmissionIndex{}))

	index := repository.NewSubmissionIndexRepository(db)
	packs := repository.NewPackStore(layout.AssignedDir(), logger)
	settings := repository.NewSettingsStore(layout, logger)
	if !opts.seededProfile {
		_, err = settings.Update(context.Background(), func(s *models.Settings) error {
			s.Student = models.StudentProfile{}
			return nil
		})
		require.NoError(t, err)
	}
	cache := service.NewDashboardCache(nil, time.Minute, logger)

	submissions := service.NewSubmissionService(service.SubmissionServiceDeps{
		Store:    store,
		Index:    index,
		Packs:    packs,
		Settings: settings,
		Cache:    cache,
		Logger:   logger,
	})
	dashboard := service.NewDashboardService(store, index, cache, logger)
	packService := service.NewPackService(packs, settings, nil, logger)
	modules := service.NewModuleService(repository.NewModuleRepository(layout.ModulesDir(), logger), nil, logger)
	modelCache := ai.NewModelCache(func(ai.ModelConfig) (ai.Model, error) { return echoModel{}, nil })
	chat := service.NewChatService(modelCache, settings, nil, logger)
	auth := service.NewAuthService(settings, testSecret, time.Hour, nil, logger)
	console := service.NewConsoleService(settings, nil, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "Test", JWTSecret: testSecret, DataBasePath: layout.Base}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissions, dashboard, logger),
		PackHandler:       handler.NewPackHandler(packService, logger),
		ModuleHandler:     handler.NewModuleHandler(modules, logger),
		ChatHandler:       handler.NewChatHandler(chat, middleware.RateLimit("chat", 100, time.Minute), logger),
		AuthHandler:       handler.NewAuthHandler(auth, logger),
		ConsoleHandler:    handler.NewConsoleHandler(console, logger),
	})

	return &appEnv{app: app, layout: layout, store: store, settings: settings}
}

func (e *appEnv) do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var envelope apiResponse
	decodeResponse(t, resp, &envelope)
	return resp, envelope
}

// teacherToken logs in with the default pin.
func (e *appEnv) teacherToken(t *testing.T) string {
	t.Helper()

	resp, envelope := e.do(t, http.MethodPost, "/api/v1/teacher/session", map[string]string{"pin": repository.DefaultTeacherPIN}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(body) == 0 {
		return
	}
	require.NoError(t, json.Unmarshal(body, target))
}
