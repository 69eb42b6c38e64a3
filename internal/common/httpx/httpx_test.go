package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEnvelopes(t *testing.T) {
	rr := httptest.NewRecorder()
	SendResult(context.Background(), rr, map[string]any{"id": 42})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":{"result":{"id":42}}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	SendError(context.Background(), rr, http.StatusOK, 8, "URL already exists")
	assert.JSONEq(t, `{"response":{"error":{"code":8,"message":"URL already exists"}}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	SendResponse(context.Background(), rr, map[string]any{"token": "T1"})
	assert.JSONEq(t, `{"response":{"token":"T1"}}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGetRequestParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/account?domain=example.com&token=T1", nil)
	params, err := GetRequestParams(req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"domain": "example.com", "token": "T1"}, params)

	req = httptest.NewRequest(http.MethodPost, "/price", strings.NewReader(`{"companies":2,"flag":true}`))
	params, err = GetRequestParams(req)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), params["companies"])
	assert.Equal(t, true, params["flag"])

	req = httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`not json`))
	_, err = GetRequestParams(req)
	assert.ErrorIs(t, err, ErrUnableToParseReqData)
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := NewResponseWriter(rr)
	assert.False(t, rw.Written())
	assert.Equal(t, http.StatusOK, rw.Status())
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusNotFound, rw.Status())
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Same(t, rw, NewResponseWriter(rw))
}
