package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/actsync/pkg/controller/http"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
	"github.com/m-mizutani/actsync/pkg/infra/catalog"
	"github.com/m-mizutani/actsync/pkg/infra/memory"
	"github.com/m-mizutani/actsync/pkg/usecase"
)

const testKey = "test-key"

func newTestServer(t *testing.T, opts ...usecase.CatalogOption) *controller.Server {
	t.Helper()
	server, err := controller.NewServer(
		context.Background(),
		usecase.NewCatalog(memory.New(), opts...),
		controller.WithFunctionKey(testKey),
	)
	gt.NoError(t, err)
	return server
}

func TestActionsHandler_FunctionKey(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		key            string
		wantStatusCode int
	}{
		{
			name:           "Valid key",
			key:            testKey,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Invalid key",
			key:            "wrong",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Missing key",
			key:            "",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, catalog.ListPath, nil)
			if tt.key != "" {
				req.Header.Set(types.FunctionKeyHeader, tt.key)
			}

			w := httptest.NewRecorder()
			server.Handler.ServeHTTP(w, req)

			gt.Value(t, w.Code).Equal(tt.wantStatusCode)
			gt.Value(t, w.Header().Get(types.CorrelationIDHeader)).NotEqual("")
		})
	}
}

func TestActionsHandler_Upsert(t *testing.T) {
	server := newTestServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, catalog.UpsertPath, bytes.NewReader([]byte(body)))
		req.Header.Set(types.FunctionKeyHeader, testKey)
		req.Header.Set(types.CorrelationIDHeader, "corr-test")
		w := httptest.NewRecorder()
		server.Handler.ServeHTTP(w, req)
		return w
	}

	t.Run("create then no change", func(t *testing.T) {
		w := post(`{"owner":"o","name":"n","verified":true}`)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var result model.UpsertResult
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		gt.Value(t, result).Equal(model.UpsertResult{Created: true})

		w = post(`{"owner":"o","name":"n","verified":true}`)
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		gt.Value(t, result).Equal(model.UpsertResult{})
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := post(`{"owner":`)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.String(t, w.Body.String()).Contains(model.ErrCodeInvalidPayload)
	})

	t.Run("missing name", func(t *testing.T) {
		w := post(`{"owner":"o"}`)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.String(t, w.Body.String()).Contains(model.ErrCodeValidation)
		gt.String(t, w.Body.String()).Contains("corr-test")
	})
}

func TestActionsHandler_PropertyTooLarge(t *testing.T) {
	server := newTestServer(t, usecase.WithPropertyLimit(20))

	body := `{"owner":"o","name":"n","dependents":"` + strings.Repeat("x", 30) + `"}`
	req := httptest.NewRequest(http.MethodPost, catalog.UpsertPath, bytes.NewReader([]byte(body)))
	req.Header.Set(types.FunctionKeyHeader, testKey)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Value(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
	gt.String(t, w.Body.String()).Contains(model.ErrCodePropertyTooLarge)
}

func TestActionsHandler_BodyTooLarge(t *testing.T) {
	server := newTestServer(t)

	body := `{"owner":"o","name":"n","dependents":"` + strings.Repeat("x", 5<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, catalog.UpsertPath, strings.NewReader(body))
	req.Header.Set(types.FunctionKeyHeader, testKey)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Value(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
	gt.String(t, w.Body.String()).Contains(model.ErrCodePropertyTooLarge)
}

func TestSyncAgainstServer(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	client, err := catalog.NewClient(ts.URL, catalog.WithFunctionKey(testKey))
	gt.NoError(t, err)

	var candidates []*model.ActionEntry
	gt.NoError(t, json.Unmarshal([]byte(`[
		{"owner":"actions","name":"checkout","repoInfo":{"updated_at":"2024-03-01T00:00:00Z"},
		 "tagInfo":["v1.0.0","v2.0.0","+run1-attempt1","v3.0.0"]},
		{"owner":"actions","name":"cache","repoInfo":{"updated_at":"2024-03-02T00:00:00Z"}},
		{"owner":"","name":"broken"}
	]`), &candidates))

	first := usecase.NewSync(client, usecase.WithTrimWindow(3)).Sync(ctx, candidates)
	gt.Value(t, first.Stats.Created).Equal(2)
	gt.Value(t, first.Stats.Failed).Equal(1)
	gt.String(t, first.Results[2].Error).Contains(model.ErrCodeValidation)
	gt.Value(t, first.Results[2].StatusCode).Equal(http.StatusBadRequest)
	gt.Value(t, first.Results[2].CorrelationID).NotEqual("")

	stored, err := client.ListActions(ctx)
	gt.NoError(t, err)
	gt.Value(t, len(stored)).Equal(2)
	gt.Value(t, stored[0].TagInfo.Names()).Equal([]string{"v3.0.0", "v2.0.0", "v1.0.0"})

	second := usecase.NewSync(client).Sync(ctx, candidates)
	gt.Value(t, second.Stats.Existing).Equal(2)
	gt.Value(t, second.Stats.SkippedNotUpdated).Equal(2)
	gt.Value(t, second.Stats.Uploaded).Equal(0)
}
