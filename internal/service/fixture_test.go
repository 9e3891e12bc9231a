package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

const scenarioAnswer = "Photosynthesis converts light into chemical energy."

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.messages = append(p.messages, append([]byte(nil), data...))
	return nil
}

type testEnv struct {
	layout    repository.Layout
	store     repository.SubmissionStore
	index     repository.SubmissionIndexRepository
	packs     repository.PackStore
	settings  repository.SettingsStore
	cache     *DashboardCache
	redis     *miniredis.Miniredis
	publisher *recordingPublisher
}

type envOptions struct {
	rejectOverwrite bool
	withRedis       bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	layout := repository.NewLayout(t.TempDir())
	require.NoError(t, layout.EnsureFolders())

	store, err := repository.NewSubmissionStore(layout.CompletedDir(), repository.SubmissionStoreOptions{RejectOverwrite: opts.rejectOverwrite}, zerolog.Nop())
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SubmissionIndex{}))

	env := &testEnv{
		layout:    layout,
		store:     store,
		index:     repository.NewSubmissionIndexRepository(db),
		packs:     repository.NewPackStore(layout.AssignedDir(), zerolog.Nop()),
		settings:  repository.NewSettingsStore(layout, zerolog.Nop()),
		publisher: &recordingPublisher{},
	}

	var client *redis.Client
	if opts.withRedis {
		mini, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mini.Close)
		env.redis = mini
		client = redis.NewClient(&redis.Options{Addr: mini.Addr()})
	}
	env.cache = NewDashboardCache(client, time.Minute, zerolog.Nop())

	return env
}

// useStudent overwrites the student profile in settings.
func (e *testEnv) useStudent(t *testing.T, profile models.StudentProfile) {
	t.Helper()
	_, err := e.settings.Update(context.Background(), func(settings *models.Settings) error {
		settings.Student = profile
		return nil
	})
	require.NoError(t, err)
}

func (e *testEnv) submissionService(clock func() time.Time) SubmissionService {
	svc := NewSubmissionService(SubmissionServiceDeps{
		Store:    e.store,
		Index:    e.index,
		Packs:    e.packs,
		Settings: e.settings,
		Cache:    e.cache,
		Notifier: NewNotifier(e.publisher, "chatty.submissions", zerolog.Nop()),
		Logger:   zerolog.Nop(),
	})
	if clock != nil {
		svc.(*submissionService).now = clock
	}
	return svc
}

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		value := current
		current = current.Add(step)
		return value
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
