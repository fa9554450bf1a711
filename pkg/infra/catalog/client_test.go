package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
	"github.com/m-mizutani/actsync/pkg/infra/catalog"
)

func TestNewClient(t *testing.T) {
	_, err := catalog.NewClient("")
	gt.Error(t, err)

	_, err = catalog.NewClient("ftp://example.com")
	gt.Error(t, err)

	client, err := catalog.NewClient("https://example.com/")
	gt.NoError(t, err)
	gt.Value(t, client).NotNil()
}

func TestNewClient_TimeoutDoesNotTouchSharedClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	shared := &http.Client{}
	client, err := catalog.NewClient(server.URL,
		catalog.WithHTTPClient(shared),
		catalog.WithTimeout(5*time.Second),
	)
	gt.NoError(t, err)
	gt.Value(t, shared.Timeout).Equal(time.Duration(0))

	_, err = client.ListActions(context.Background())
	gt.NoError(t, err)

	client, err = catalog.NewClient(server.URL,
		catalog.WithHTTPClient(nil),
		catalog.WithTimeout(5*time.Second),
	)
	gt.NoError(t, err)

	actions, err := client.ListActions(context.Background())
	gt.NoError(t, err)
	gt.Value(t, len(actions)).Equal(0)
}

func TestClient_ListActions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != catalog.ListPath || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get(types.FunctionKeyHeader) != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"owner":"actions","name":"checkout","repoInfo":{"updated_at":"2024-01-01T00:00:00Z"},"tagInfo":["v4","v3"]},
			{"owner":"actions","name":"cache"}
		]`))
	}))
	defer server.Close()

	client, err := catalog.NewClient(server.URL, catalog.WithFunctionKey("secret"))
	gt.NoError(t, err)

	actions, err := client.ListActions(context.Background())
	gt.NoError(t, err)
	gt.Value(t, len(actions)).Equal(2)
	gt.Value(t, actions[0].Name).Equal("checkout")
	gt.Value(t, actions[0].TagInfo.Names()).Equal([]string{"v4", "v3"})

	t.Run("missing key is rejected", func(t *testing.T) {
		client, err := catalog.NewClient(server.URL)
		gt.NoError(t, err)

		_, err = client.ListActions(context.Background())
		var apiErr *model.APIError
		gt.Value(t, errors.As(err, &apiErr)).Equal(true)
		gt.Value(t, apiErr.StatusCode).Equal(http.StatusUnauthorized)
	})
}

func TestClient_UpsertAction(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != catalog.UpsertPath || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		_, _ = w.Write([]byte(`{"created":false,"updated":true}`))
	}))
	defer server.Close()

	client, err := catalog.NewClient(server.URL)
	gt.NoError(t, err)

	resp, err := client.UpsertAction(context.Background(), &model.ActionEntry{
		Owner:   "actions",
		Name:    "checkout",
		TagInfo: model.NewPlainTagList("v4"),
	})
	gt.NoError(t, err)
	gt.Value(t, *resp).Equal(model.UpsertResult{Updated: true})

	gt.Value(t, received["owner"]).Equal(any("actions"))
	gt.Value(t, received["tagInfo"]).Equal(any([]any{"v4"}))
	_, hasRelease := received["releaseInfo"]
	gt.Value(t, hasRelease).Equal(false)
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   string
		body     string
		wantErr  string
		wantCode string
		wantCorr string
	}{
		{
			name:     "structured error",
			status:   http.StatusRequestEntityTooLarge,
			body:     `{"error":"property too large","code":"PROPERTY_TOO_LARGE","correlationId":"c-1","details":{"property":"tagInfo"}}`,
			wantErr:  "PROPERTY_TOO_LARGE: property too large",
			wantCode: "PROPERTY_TOO_LARGE",
			wantCorr: "c-1",
		},
		{
			name:     "correlation id from header",
			status:   http.StatusInternalServerError,
			header:   "c-2",
			body:     `{"message":"storage unavailable"}`,
			wantErr:  "storage unavailable",
			wantCorr: "c-2",
		},
		{
			name:    "plain text body",
			status:  http.StatusBadGateway,
			body:    "upstream failed",
			wantErr: "upstream failed",
		},
		{
			name:    "empty body",
			status:  http.StatusServiceUnavailable,
			wantErr: "503 Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.header != "" {
					w.Header().Set(types.CorrelationIDHeader, tt.header)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := catalog.NewClient(server.URL)
			gt.NoError(t, err)

			_, err = client.UpsertAction(context.Background(), &model.ActionEntry{Owner: "o", Name: "n"})
			var apiErr *model.APIError
			gt.Value(t, errors.As(err, &apiErr)).Equal(true)
			gt.Value(t, apiErr.Error()).Equal(tt.wantErr)
			gt.Value(t, apiErr.Code).Equal(tt.wantCode)
			gt.Value(t, apiErr.CorrelationID).Equal(tt.wantCorr)
			gt.Value(t, apiErr.StatusCode).Equal(tt.status)
		})
	}
}
