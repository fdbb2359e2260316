package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	"futuremap/infrastructure/observability"
	pkgerrors "futuremap/pkg/errors"
)

var testSession = ports.Session{UserID: "42", BearerToken: "tok"}

func testConfig(url string) ClientConfig {
	return ClientConfig{
		BaseURL:             url,
		Timeout:             2 * time.Second,
		BreakerMaxFailures:  2,
		BreakerOpenInterval: time.Minute,
	}
}

func TestCatalogClient_FetchCatalog(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"courses": {"icon": "Book", "color": "blue", "items": [
				{"title": "B.Tech", "duration": "4 years", "cost": 400000, "type": "course"},
				{"title": "", "duration": "1 year", "cost": 10, "type": "course"}
			]},
			"exams": {"icon": "Clipboard", "color": "red", "items": [
				{"title": "JEE", "duration": "1 year", "cost": 5000, "type": "exam"}
			]}
		}`))
	}))
	defer srv.Close()

	collector := observability.NewCollector("test")
	client := NewCatalogClient(testConfig(srv.URL+"/"), "flashcards_api.php?action=getFlashcards", nil, collector, zap.NewNop())

	catalog, err := client.FetchCatalog(context.Background(), testSession)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "action=getFlashcards", gotQuery)
	assert.Equal(t, []string{"courses", "exams"}, catalog.CategoryNames())
	assert.Equal(t, 2, catalog.Size())
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CollaboratorCalls.WithLabelValues("catalog", "success")))
}

func TestCatalogClient_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		session ports.Session
		wantMsg string
	}{
		{name: "error field", status: http.StatusOK, body: `{"error": "Education level not set"}`, session: testSession, wantMsg: "Education level not set"},
		{name: "client error status", status: http.StatusForbidden, body: `{"error": "forbidden"}`, session: testSession, wantMsg: "forbidden"},
		{name: "status without body", status: http.StatusNotFound, body: ``, session: testSession, wantMsg: "HTTP error, status 404"},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error": "db down"}`, session: testSession, wantMsg: "failed to load flashcards"},
		{name: "malformed body", status: http.StatusOK, body: `not json`, session: testSession, wantMsg: "malformed catalog response"},
		{name: "missing token", status: http.StatusOK, body: `{}`, session: ports.Session{UserID: "42"}, wantMsg: "no authentication token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewCatalogClient(testConfig(srv.URL), "flashcards", nil, nil, nil)
			catalog, err := client.FetchCatalog(context.Background(), tt.session)
			require.Error(t, err)
			assert.Nil(t, catalog)
			assert.True(t, pkgerrors.IsCatalogUnavailable(err))
			assert.Contains(t, pkgerrors.GetAppError(err).Message, tt.wantMsg)
		})
	}
}

func TestCatalogClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewCatalogClient(testConfig(url), "flashcards", nil, nil, nil)
	_, err := client.FetchCatalog(context.Background(), testSession)
	assert.True(t, pkgerrors.IsCatalogUnavailable(err))
}

func TestCatalogClient_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	collector := observability.NewCollector("test")
	client := NewCatalogClient(testConfig(srv.URL), "flashcards", nil, collector, nil)

	for i := 0; i < 4; i++ {
		_, err := client.FetchCatalog(context.Background(), testSession)
		assert.True(t, pkgerrors.IsCatalogUnavailable(err))
	}

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.CollaboratorCalls.WithLabelValues("catalog", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.CollaboratorCalls.WithLabelValues("catalog", "rejected")))
}

func TestDecodeCatalog_DropsInvalidTemplates(t *testing.T) {
	catalog, err := decodeCatalog([]byte(`{"skills": {"icon": "Zap", "color": "green", "items": [
		{"title": "Python", "duration": "3 months", "cost": 0, "type": "skill"},
		{"title": "Odd", "duration": "", "cost": 0, "type": "hobby"}
	]}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Size())
	assert.Equal(t, "Python", catalog.Categories()["skills"].Items[0].Title)
	assert.Equal(t, entities.CardTypeSkill, catalog.Categories()["skills"].Items[0].Type)
}

func sampleSnapshot() aggregates.CanvasSnapshot {
	canvasID := valueobjects.NewCanvasID()
	return aggregates.CanvasSnapshot{
		ID: canvasID.String(),
		Cards: []aggregates.CardSnapshot{
			{ID: "course-1-" + canvasID.String(), Type: entities.CardTypeCourse, Title: "B.Tech", Duration: "4 years", Cost: 400000, Position: valueobjects.NewPosition(30, 0)},
			{ID: "exam-2-" + canvasID.String(), Type: entities.CardTypeExam, Title: "GATE", Duration: "1 year", Cost: 1500, Position: valueobjects.NewPosition(60, 0)},
		},
		Connections: []aggregates.ConnectionSnapshot{
			{From: "exam-2-" + canvasID.String(), To: "course-1-" + canvasID.String()},
		},
	}
}

func TestPathStoreClient_SavePath(t *testing.T) {
	snap := sampleSnapshot()

	tests := []struct {
		name   string
		status int
		body   string
		want   ports.SaveOutcome
	}{
		{name: "saved", status: http.StatusOK, body: `{"success": true, "message": "Career path saved"}`, want: ports.SaveOutcome{Success: true, Message: "Career path saved"}},
		{name: "empty body", status: http.StatusCreated, body: ``, want: ports.SaveOutcome{Success: false, Message: "malformed save response"}},
		{name: "html error page", status: http.StatusOK, body: `<br /><b>Fatal error</b>: Uncaught PDOException`, want: ports.SaveOutcome{Success: false, Message: "malformed save response"}},
		{name: "rejected in body", status: http.StatusOK, body: `{"success": false, "error": "Path limit reached"}`, want: ports.SaveOutcome{Success: false, Message: "Path limit reached"}},
		{name: "rejected by status", status: http.StatusUnauthorized, body: `{"error": "Invalid token"}`, want: ports.SaveOutcome{Success: false, Message: "Invalid token"}},
		{name: "status without message", status: http.StatusBadRequest, body: ``, want: ports.SaveOutcome{Success: false, Message: "HTTP error, status 400"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got saveRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/career_paths_api.php", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := NewPathStoreClient(testConfig(srv.URL), "career_paths_api.php", "get_career_paths.php", nil, nil, nil)
			outcome, err := store.SavePath(context.Background(), testSession, snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)

			assert.Equal(t, snap.ID, got.PathID)
			assert.Equal(t, snap.Cards, got.Cards)
			assert.Equal(t, snap.Connections, got.Connections)
		})
	}
}

func TestPathStoreClient_SavePathSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := NewPathStoreClient(testConfig(srv.URL), "save", "load", nil, nil, nil)
	_, err := store.SavePath(context.Background(), testSession, sampleSnapshot())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	assert.Equal(t, int32(1), hits.Load())
}

func TestPathStoreClient_SavePathWithoutToken(t *testing.T) {
	store := NewPathStoreClient(testConfig("http://127.0.0.1:0"), "save", "load", nil, nil, nil)
	outcome, err := store.SavePath(context.Background(), ports.Session{UserID: "42"}, sampleSnapshot())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "no authentication token")
}

func TestPathStoreClient_LoadPaths(t *testing.T) {
	snap := sampleSnapshot()
	var gotUser loadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_career_paths.php", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotUser))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []aggregates.CanvasSnapshot{snap},
		})
	}))
	defer srv.Close()

	store := NewPathStoreClient(testConfig(srv.URL), "career_paths_api.php", "get_career_paths.php", nil, nil, nil)
	paths, err := store.LoadPaths(context.Background(), testSession)
	require.NoError(t, err)

	assert.Equal(t, "42", gotUser.UserID)
	require.Len(t, paths, 1)
	assert.Equal(t, snap.ID, paths[0].ID)
	assert.Equal(t, snap.Cards, paths[0].Cards)
	assert.Equal(t, snap.Connections, paths[0].Connections)
}

func TestPathStoreClient_LoadPathsFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "unsuccessful", status: http.StatusOK, body: `{"success": false, "error": "No paths"}`, wantMsg: "No paths"},
		{name: "malformed", status: http.StatusOK, body: `<html>`, wantMsg: "external service 'path-store' error"},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantMsg: "external service 'path-store' error"},
		{name: "bad status", status: http.StatusForbidden, body: `{"success": false}`, wantMsg: "load rejected with status 403"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := NewPathStoreClient(testConfig(srv.URL), "save", "load", nil, nil, nil)
			_, err := store.LoadPaths(context.Background(), testSession)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, pkgerrors.GetAppError(err).Message)
		})
	}
}

func TestPathStoreClient_LoadPathsNeedsUser(t *testing.T) {
	store := NewPathStoreClient(testConfig("http://127.0.0.1:0"), "save", "load", nil, nil, nil)
	_, err := store.LoadPaths(context.Background(), ports.Session{BearerToken: "tok"})
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}
