package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/repository/filesystem"
	"voice-shopping-be/internal/service"
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/catalog"
	"voice-shopping-be/pkg/speech"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubAssistant struct {
	lastQuery string
}

func (s *stubAssistant) Ask(_ context.Context, query string, _ string) (*graph.State, bool, error) {
	s.lastQuery = query
	return &graph.State{Query: query, Answer: "ok"}, false, nil
}

func (s *stubAssistant) Query(_ context.Context, req *dto.QueryRequest, _ string) (*dto.QueryResponse, error) {
	s.lastQuery = req.Query
	return &dto.QueryResponse{Success: true, Query: req.Query, Answer: "Try the kettle [DOC 1].", Citations: []string{"k1"}}, nil
}

func (s *stubAssistant) Agent(_ context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error) {
	s.lastQuery = req.Text
	return &dto.AgentResponse{Query: req.Text, Answer: "ok"}, nil
}

type stubSynth struct{}

func (stubSynth) Synthesize(_ context.Context, text, _, _ string) ([]byte, error) {
	return []byte("ID3" + text), nil
}

type stubASR struct{}

func (stubASR) Transcribe(_ context.Context, audio io.Reader, _ string, language string) (*speech.Transcript, error) {
	raw, _ := io.ReadAll(audio)
	return &speech.Transcript{Text: string(raw), Language: language}, nil
}

type stubCatalog struct {
	queued    int
	lastQuery dto.ProductListQuery
}

func (s *stubCatalog) Enqueue(_ context.Context, req *dto.IndexProductsRequest) (*dto.IndexProductsResponse, error) {
	s.queued += len(req.Products)
	return &dto.IndexProductsResponse{Queued: len(req.Products)}, nil
}

func (s *stubCatalog) IndexProducts(_ context.Context, rows []catalog.Row) (int, error) {
	return len(rows), nil
}

func (s *stubCatalog) Count(context.Context) (int64, error) {
	return 42, nil
}

func (s *stubCatalog) List(_ context.Context, query dto.ProductListQuery) (*dto.ProductListResponse, error) {
	s.lastQuery = query
	return &dto.ProductListResponse{Products: []dto.ProductResponse{{UniqID: "p1"}}, Total: 1}, nil
}

func (s *stubCatalog) Get(_ context.Context, uniqID string) (*dto.ProductResponse, error) {
	if uniqID != "p1" {
		return nil, service.ErrProductNotFound
	}
	return &dto.ProductResponse{UniqID: "p1", ProductName: "Dove Shampoo"}, nil
}

type testEnv struct {
	app       *fiber.App
	store     *filesystem.AudioStore
	assistant *stubAssistant
	catalog   *stubCatalog
}

func newTestEnv(t *testing.T, withSpeech bool) *testEnv {
	t.Helper()
	store, err := filesystem.NewAudioStore(t.TempDir())
	require.NoError(t, err)

	var speechService service.ISpeechService
	if withSpeech {
		speechService = service.NewSpeechService(stubSynth{}, stubASR{}, store, nil, nil, logger.NewNopLogger(), service.SpeechServiceConfig{Language: "en"})
	} else {
		speechService = service.NewSpeechService(nil, nil, store, nil, nil, logger.NewNopLogger(), service.SpeechServiceConfig{})
	}

	env := &testEnv{store: store, assistant: &stubAssistant{}, catalog: &stubCatalog{}}
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())

	NewHealthController("1.2.3", speechService, func() bool { return true }).RegisterRoutes(app)
	api := app.Group("/api")
	NewAssistantController(env.assistant).RegisterRoutes(api)
	NewSpeechController(speechService).RegisterRoutes(api)
	NewAdminController(speechService, env.catalog, serverutils.NewJwtMiddleware(testSecret)).RegisterRoutes(api)

	env.app = app
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	res, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if strings.HasPrefix(res.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return res, body
}

func jsonRequest(method, path string, payload any) *http.Request {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	res, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, false, body["tts_available"])
	assert.Equal(t, true, body["agent_available"])
}

func TestQuery(t *testing.T) {
	env := newTestEnv(t, false)

	res, body := env.do(t, jsonRequest(http.MethodPost, "/api/query", dto.QueryRequest{Query: "steel kettle"}))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "steel kettle", env.assistant.lastQuery)
	assert.Equal(t, "Try the kettle [DOC 1].", body["answer"])
}

func TestQuery_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name    string
		payload any
	}{
		{name: "missing query", payload: map[string]any{}},
		{name: "too long", payload: dto.QueryRequest{Query: strings.Repeat("a", 501)}},
		{name: "unknown voice", payload: dto.QueryRequest{Query: "kettle", Voice: "robot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := env.do(t, jsonRequest(http.MethodPost, "/api/query", tt.payload))
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.NotEmpty(t, body["errors"])
		})
	}
}

func TestQuery_MalformedBody(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, _ := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAgent(t *testing.T) {
	env := newTestEnv(t, false)

	res, body := env.do(t, jsonRequest(http.MethodPost, "/api/agent", dto.AgentRequest{Text: "vegan soap"}))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "vegan soap", body["query"])
}

func TestTTS_NotConfigured(t *testing.T) {
	env := newTestEnv(t, false)

	res, _ := env.do(t, jsonRequest(http.MethodPost, "/api/tts", dto.TTSRequest{Text: "hello"}))

	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestTTS_RoundTrip(t *testing.T) {
	env := newTestEnv(t, true)

	res, body := env.do(t, jsonRequest(http.MethodPost, "/api/tts", dto.TTSRequest{Text: "hello there", Voice: "nova"}))
	require.Equal(t, http.StatusOK, res.StatusCode)
	id, _ := body["audio_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "/api/tts/audio/"+id, body["audio_url"])

	res, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/tts/audio/"+id, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "audio/mpeg", res.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "public, max-age=3600", res.Header.Get(fiber.HeaderCacheControl))
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "ID3hello there", string(raw))

	res, _ = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/tts/audio/"+id, nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	_, err = os.Stat(filepath.Join(env.store.Dir(), id+".mp3"))
	assert.True(t, os.IsNotExist(err))
}

func TestTTS_AudioErrors(t *testing.T) {
	env := newTestEnv(t, true)

	res, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/tts/audio/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/tts/audio/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = env.do(t, jsonRequest(http.MethodPost, "/api/tts", dto.TTSRequest{Text: strings.Repeat("a", 4097)}))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestVoices(t *testing.T) {
	env := newTestEnv(t, false)

	res, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/voices", nil))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["data"], len(speech.Voices))
}

func TestASR(t *testing.T) {
	env := newTestEnv(t, true)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio_file", "clip.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("find organic shampoo"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/asr", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	res, body := env.do(t, req)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "find organic shampoo", body["text"])
	assert.Equal(t, "en", body["language"])
}

func TestASR_MissingFile(t *testing.T) {
	env := newTestEnv(t, true)

	res, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/api/asr", nil))

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t, false)

	res, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t, "viewer"))
	res, _ = env.do(t, req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAdmin_Cleanup(t *testing.T) {
	env := newTestEnv(t, false)
	id, err := env.store.Save([]byte("old"))
	require.NoError(t, err)
	past := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(env.store.Dir(), id+".mp3"), past, past))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup?max_age_hours=48", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t, "admin"))
	res, body := env.do(t, req)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(1), body["deleted_count"])

	req = httptest.NewRequest(http.MethodPost, "/api/admin/cleanup?max_age_hours=abc", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t, "admin"))
	res, _ = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAdmin_IndexProducts(t *testing.T) {
	env := newTestEnv(t, false)

	req := jsonRequest(http.MethodPost, "/api/admin/products", dto.IndexProductsRequest{Products: []dto.ProductInput{
		{UniqID: "p1", ProductName: "Shampoo"},
	}})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t, "admin"))
	res, body := env.do(t, req)

	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, 1, env.catalog.queued)
	assert.Equal(t, true, body["success"])

	req = httptest.NewRequest(http.MethodGet, "/api/admin/products/count", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t, "admin"))
	res, body = env.do(t, req)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]any{"count": float64(42)}, body["data"])
}

func TestAdmin_ListAndGetProducts(t *testing.T) {
	env := newTestEnv(t, false)
	token := "Bearer " + adminToken(t, "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products?category=shampoo&brand=Dove,Pantene&limit=10&offset=5", nil)
	req.Header.Set(fiber.HeaderAuthorization, token)
	res, body := env.do(t, req)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, dto.ProductListQuery{Category: "shampoo", Brand: "Dove,Pantene", Limit: 10, Offset: 5}, env.catalog.lastQuery)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total"])

	req = httptest.NewRequest(http.MethodGet, "/api/admin/products?limit=500", nil)
	req.Header.Set(fiber.HeaderAuthorization, token)
	res, _ = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/products/p1", nil)
	req.Header.Set(fiber.HeaderAuthorization, token)
	res, body = env.do(t, req)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Dove Shampoo", body["data"].(map[string]any)["product_name"])

	req = httptest.NewRequest(http.MethodGet, "/api/admin/products/nope", nil)
	req.Header.Set(fiber.HeaderAuthorization, token)
	res, _ = env.do(t, req)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
