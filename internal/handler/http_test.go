package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/repository"
	"anime-watchlist/internal/service"
)

const testToken = "secret"

type stubBackuper struct {
	path string
	err  error
}

func (s stubBackuper) Backup() (string, error) { return s.path, s.err }

type memoryActions struct {
	actions []models.Action
}

func (m *memoryActions) Create(action *models.Action) error {
	action.ID = int64(len(m.actions) + 1)
	m.actions = append(m.actions, *action)
	return nil
}

func (m *memoryActions) Recent(limit int) ([]models.Action, error) {
	start := max(0, len(m.actions)-limit)
	return m.actions[start:], nil
}

func newTestRouter(t *testing.T, token string, backup service.Backuper) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	activity := service.NewActivityLogger(&memoryActions{}, nil)
	registry := repository.NewRegistry(afero.NewMemMapFs(), "data", false)
	h := NewHTTPHandler(service.NewWatchlistService(registry, activity), activity, backup, token)

	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthNeedsNoToken(t *testing.T) {
	r := newTestRouter(t, "", stubBackuper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"token not configured", "", "Bearer x", http.StatusForbidden},
		{"missing header", testToken, "", http.StatusUnauthorized},
		{"wrong scheme", testToken, "Basic " + testToken, http.StatusUnauthorized},
		{"wrong token", testToken, "Bearer nope", http.StatusUnauthorized},
		{"valid token", testToken, "bearer " + testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.token, stubBackuper{})
			req := httptest.NewRequest(http.MethodGet, "/api/users/1/entries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestEntryLifecycle(t *testing.T) {
	r := newTestRouter(t, testToken, stubBackuper{})

	w := do(r, http.MethodPost, "/api/users/7/entries", models.EntryInput{
		Title: "Naruto", Status: "Watching", Preference: "High", TotalEpisodes: 220, Genre: "Shounen",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct{ Entry models.Entry }](t, w)
	assert.Equal(t, "Naruto", created.Entry.Title)
	assert.NotNil(t, created.Entry.StartDate)

	w = do(r, http.MethodGet, "/api/users/7/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Entries []models.Entry }](t, w)
	assert.Len(t, list.Entries, 1)

	w = do(r, http.MethodPut, "/api/users/7/entries/0/progress", gin.H{"episodes": 220})
	require.Equal(t, http.StatusOK, w.Code)
	progressed := decode[struct{ Entry models.Entry }](t, w)
	assert.Equal(t, models.StatusCompleted, progressed.Entry.Status)

	w = do(r, http.MethodPut, "/api/users/7/entries/0/status", gin.H{"status": "to watch"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/users/7/entries/0/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/users/7/favorites", nil)
	favorites := decode[struct{ Entries []models.Entry }](t, w)
	assert.Len(t, favorites.Entries, 1)

	w = do(r, http.MethodDelete, "/api/users/7/entries/0", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	do(r, http.MethodPost, "/api/users/7/entries/0/favorite", nil)
	w = do(r, http.MethodDelete, "/api/users/7/entries/0", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/users/7/entries", nil)
	assert.JSONEq(t, `{"entries":[]}`, w.Body.String())
}

func TestEntryErrors(t *testing.T) {
	r := newTestRouter(t, testToken, stubBackuper{})

	w := do(r, http.MethodPost, "/api/users/7/entries", models.EntryInput{
		Title: "Naruto", Status: "Dropped", Preference: "High", TotalEpisodes: 220,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid status! Must be one of: Completed, To Watch, Watching"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/users/7/entries/0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/users/abc/entries", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/users/7/entries/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/users/7/entries/0/progress", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/users/7/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/users/7/random", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchRandomAndActivity(t *testing.T) {
	r := newTestRouter(t, testToken, stubBackuper{})
	do(r, http.MethodPost, "/api/users/7/entries", models.EntryInput{
		Title: "Naruto", Status: "To Watch", Preference: "Low", TotalEpisodes: 220,
	})

	w := do(r, http.MethodGet, "/api/users/7/search?q=NAR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[struct{ Results []models.Entry }](t, w)
	assert.Len(t, results.Results, 1)

	w = do(r, http.MethodGet, "/api/users/7/random", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/activity?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	activity := decode[struct{ Actions []models.Action }](t, w)
	require.Len(t, activity.Actions, 2)
	assert.Equal(t, "Random Anime", activity.Actions[1].Name)

	w = do(r, http.MethodGet, "/api/activity?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackupEndpoint(t *testing.T) {
	r := newTestRouter(t, testToken, stubBackuper{path: "backups/watchlist_backup_x"})
	w := do(r, http.MethodPost, "/api/backup", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"backup_path":"backups/watchlist_backup_x"}`, w.Body.String())

	r = newTestRouter(t, testToken, stubBackuper{err: errors.New("disk full")})
	w = do(r, http.MethodPost, "/api/backup", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
