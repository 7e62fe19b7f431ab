package cantonclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL, Token: "test-token"}, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client, server
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestRequestSendsBearerToken(t *testing.T) {
	var captured struct {
		auth        string
		contentType string
		path        string
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.contentType = r.Header.Get("Content-Type")
		captured.path = r.URL.Path
		w.Write([]byte(`{"party":"p","displayName":"d"}`))
	}))

	_, err := client.AllocateParty(context.Background(), "d", "p")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", captured.auth)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, "/v1/parties/allocate", captured.path)
}

func TestRequestNon2xxBecomesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("missing authorization"))
	}))

	_, err := client.Query(context.Background(), TemplateID{ModuleName: "M", EntityName: "E"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "missing authorization", apiErr.Body)
	assert.Contains(t, apiErr.Error(), "403")
}

func TestRequestNetworkFailure(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.Query(context.Background(), TemplateID{ModuleName: "M", EntityName: "E"}, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "network failure is not an APIError")
}

func TestCreateWirePayload(t *testing.T) {
	var body map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Write([]byte(`{"contractId":"#1:0","payload":{"owner":"alice"}}`))
	}))

	template := TemplateID{ModuleName: "Reward", EntityName: "Reward"}
	result, err := client.Create(context.Background(), template, map[string]string{"owner": "alice"}, []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, "#1:0", result.ContractID)

	assert.Equal(t, map[string]interface{}{"moduleName": "Reward", "entityName": "Reward"}, body["templateId"])
	assert.Equal(t, map[string]interface{}{"owner": "alice"}, body["payload"])
	assert.Equal(t, map[string]interface{}{"actAs": []interface{}{"alice"}}, body["meta"])
}

func TestExerciseWirePayload(t *testing.T) {
	var body map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Write([]byte(`{"exerciseResult":{"_1":"#2:0","_2":"#3:0"},"events":[]}`))
	}))

	template := TemplateID{ModuleName: "BusinessProfile", EntityName: "LoyaltyProgram"}
	result, err := client.Exercise(context.Background(), template, "#1:0", "IssueTokens",
		map[string]interface{}{"amount": 10}, []string{"business-x"})
	require.NoError(t, err)
	assert.Equal(t, "#2:0", result.ResultField("_1"))

	assert.Equal(t, "#1:0", body["contractId"])
	assert.Equal(t, "IssueTokens", body["choice"])
	assert.Equal(t, map[string]interface{}{"amount": float64(10)}, body["argument"])
}

func TestQueryReturnsEmptySliceOnNoMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))

	contracts, err := client.Query(context.Background(), TemplateID{ModuleName: "Reward", EntityName: "Reward"}, map[string]interface{}{"business": "none"})
	require.NoError(t, err)
	assert.NotNil(t, contracts)
	assert.Empty(t, contracts)
}

func TestQueryNullResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null}`))
	}))

	contracts, err := client.Query(context.Background(), TemplateID{ModuleName: "Reward", EntityName: "Reward"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, contracts)
	assert.Empty(t, contracts)
}

func TestFetchNotFoundReturnsNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null}`))
	}))

	contract, err := client.Fetch(context.Background(), TemplateID{ModuleName: "Reward", EntityName: "Reward"}, "#9:0")
	require.NoError(t, err)
	assert.Nil(t, contract)
}

func TestFetchFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"contractId":"#9:0","payload":{"balance":5}}}`))
	}))

	contract, err := client.Fetch(context.Background(), TemplateID{ModuleName: "LoyaltyToken", EntityName: "LoyaltyToken"}, "#9:0")
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, "#9:0", contract.ContractID)
}
