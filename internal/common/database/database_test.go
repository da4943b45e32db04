package database

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendorhub-workers/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type indexedRequest struct {
	method string
	path   string
	body   map[string]interface{}
}

func setupElasticsearch(t *testing.T, status int) (*ElasticsearchClient, *[]indexedRequest) {
	t.Helper()
	var requests []indexedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := indexedRequest{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &req.body)
		}
		requests = append(requests, req)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client, &requests
}

func TestElasticsearchClient_IndexDocument(t *testing.T) {
	client, requests := setupElasticsearch(t, http.StatusCreated)

	err := client.IndexDocument(context.Background(), "prequalifications", "pq-1", map[string]interface{}{
		"applicationId": "app-1",
		"decision":      "approved",
	})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/prequalifications/_doc/pq-1", req.path)
	assert.Equal(t, "approved", req.body["decision"])
}

func TestElasticsearchClient_IndexDocument_ErrorStatus(t *testing.T) {
	client, _ := setupElasticsearch(t, http.StatusBadRequest)

	err := client.IndexDocument(context.Background(), "prequalifications", "pq-1", map[string]interface{}{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestElasticsearchClient_Ping(t *testing.T) {
	client, requests := setupElasticsearch(t, http.StatusOK)

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, http.MethodHead, (*requests)[0].method)
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewPostgres(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "vendorhub",
		User:           "vendorhub",
		SSLMode:        "disable",
		MaxConnections: 4,
		MaxIdle:        2,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, client.DB.Stats().MaxOpenConnections)
	assert.NoError(t, client.Close())
}
