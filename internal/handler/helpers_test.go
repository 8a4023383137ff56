package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/database"
	"github.com/gmprep/simulado-backend/internal/handler"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	"github.com/gmprep/simulado-backend/internal/router"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/subject"
	"github.com/gmprep/simulado-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type testEnv struct {
	router   *gin.Engine
	store    progress.Store
	essays   *memoryQueue
	sessions *memorySessions
}

// questionsFile renders n questions per subject in the corpus file format.
func questionsFile(counts map[string]int) []byte {
	var out []map[string]any
	for _, name := range subject.Canonical() {
		for i := 1; i <= counts[name]; i++ {
			out = append(out, map[string]any{
				"origem":       map[string]any{"cidade": name, "ano": 2024, "banca": "Banca"},
				"materia":      name,
				"numero":       i,
				"enunciado":    fmt.Sprintf("%s %d", name, i),
				"alternativas": map[string]string{"a": "certo", "b": "errado"},
				"correta":      "a",
				"explicacao":   "A alternativa a está correta.",
			})
		}
	}
	data, _ := json.Marshal(out)
	return data
}

func fullCounts() map[string]int {
	counts := make(map[string]int)
	for _, name := range subject.Canonical() {
		counts[name] = 12
	}
	return counts
}

func newTestEnv(t *testing.T, counts map[string]int) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "api.db")
	db, err := database.Connect(ctx, config.DriverSQLite, dsn, 1)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, config.DriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		GinMode:    gin.TestMode,
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}

	loader := corpus.NewLoader(corpus.Batches(corpus.BytesSource{Label: "test", Data: questionsFile(counts)}), zerolog.Nop())
	store := progress.NewLocalStore(progress.NewMemoryKV())
	sessions := newMemorySessions()
	essays := &memoryQueue{}

	authService := service.NewAuthService(cfg, repository.NewUserRepository(db), &memoryRevoker{revoked: make(map[string]bool)})
	simulationService := service.NewSimulationService(loader, sessions, store, time.Hour, zerolog.Nop())
	t.Cleanup(simulationService.Shutdown)

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Question:   handler.NewQuestionHandler(service.NewStudyService(loader, store)),
		Simulation: handler.NewSimulationHandler(simulationService),
		Progress:   handler.NewProgressHandler(service.NewProgressService(store)),
		Essay:      handler.NewEssayHandler(service.NewEssayService(essays, repository.NewEssayRepository(db), store)),
		WS:         handler.NewWSHandler(simulationService, nil, zerolog.Nop(), nil),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": db.PingContext,
		}),
	}

	return &testEnv{
		router:   router.SetupRouter(authService, handlers, cfg, zerolog.Nop()),
		store:    store,
		essays:   essays,
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
	}
	return w, env
}

// register creates an account and returns its token and user ID.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Candidata", "email": email, "password": "segredo1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var res model.AuthResponse
	decodeData(t, env, &res)
	return res.Token, res.User.ID
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = true
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti], nil
}

type memoryQueue struct {
	mu     sync.Mutex
	essays []*model.Essay
}

func (m *memoryQueue) Enqueue(_ context.Context, e *model.Essay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.essays = append(m.essays, e)
	return nil
}

// memorySessions keeps simulations in maps guarded by one mutex.
type memorySessions struct {
	mu        sync.Mutex
	sessions  map[string]*model.SimulationSession
	active    map[string]string
	answers   map[string]map[int]string
	submitted map[string]bool
	results   map[string]*model.SimulationOutcome
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		sessions:  make(map[string]*model.SimulationSession),
		active:    make(map[string]string),
		answers:   make(map[string]map[int]string),
		submitted: make(map[string]bool),
		results:   make(map[string]*model.SimulationOutcome),
	}
}

func (m *memorySessions) Save(_ context.Context, s *model.SimulationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	m.active[s.UserID] = s.ID
	return nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*model.SimulationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memorySessions) ActiveID(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[userID], nil
}

func (m *memorySessions) SaveAnswer(_ context.Context, s *model.SimulationSession, index int, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answers[s.ID] == nil {
		m.answers[s.ID] = make(map[int]string)
	}
	m.answers[s.ID][index] = answer
	return nil
}

func (m *memorySessions) Answers(_ context.Context, id string) (map[int]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]string, len(m.answers[id]))
	for k, v := range m.answers[id] {
		out[k] = v
	}
	return out, nil
}

func (m *memorySessions) MarkSubmitted(_ context.Context, s *model.SimulationSession) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitted[s.ID] {
		return false, nil
	}
	m.submitted[s.ID] = true
	return true, nil
}

func (m *memorySessions) IsSubmitted(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitted[id], nil
}

func (m *memorySessions) ReleaseSubmitted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.submitted, id)
	return nil
}

func (m *memorySessions) SaveResult(_ context.Context, s *model.SimulationSession, out *model.SimulationOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[s.ID] = out
	delete(m.active, s.UserID)
	return nil
}

func (m *memorySessions) Result(_ context.Context, id string) (*model.SimulationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if out, ok := m.results[id]; ok {
		return out, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memorySessions) Publish(_ context.Context, _ string, _ []byte) error {
	return nil
}
