package capi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		result  string
	}{
		{name: "result", body: `{"response":{"result":{"id":42}}}`, result: `{"id":42}`},
		{name: "result string", body: `{"response":{"result":"ok"}}`, result: `"ok"`},
		{name: "no result", body: `{"response":{"token":"T1"}}`, result: `{"token":"T1"}`},
		{name: "not json", body: `<html>oops</html>`, wantErr: ErrMalformedResponse},
		{name: "truncated", body: `{"response":`, wantErr: ErrMalformedResponse},
		{name: "empty body", body: ``, wantErr: ErrMalformedResponse},
		{name: "missing response", body: `{"data":{}}`, wantErr: ErrInvalidEnvelope},
		{name: "array", body: `[1,2]`, wantErr: ErrInvalidEnvelope},
		{name: "response not object", body: `{"response":"yes"}`, wantErr: ErrInvalidEnvelope},
		{name: "api error", body: `{"response":{"error":{"code":8,"message":"URL already exists"}}}`, wantErr: ErrAPI},
		{name: "null error", body: `{"response":{"error":null}}`, wantErr: ErrInvalidEnvelope},
		{name: "string error", body: `{"response":{"error":"boom","result":{}}}`, wantErr: ErrInvalidEnvelope},
		{name: "error beside result", body: `{"response":{"result":{"id":1},"error":{"code":2,"message":"Invalid account"}}}`, wantErr: ErrAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Parse([]byte(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				for _, other := range []error{ErrMalformedResponse, ErrInvalidEnvelope, ErrAPI, ErrTransport, ErrTokenExtraction, ErrInvalidRequest} {
					if other != tt.wantErr {
						assert.False(t, errors.Is(err, other), "error also matches %v", other)
					}
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.result, string(payload.ResultOrPayload()))
		})
	}
}

func TestParseAPIError(t *testing.T) {
	_, err := Parse([]byte(`{"response":{"error":{"code":8,"message":"URL already exists"}}}`))
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, CodeURLExists, apiErr.Code)
	assert.Equal(t, "URL already exists", apiErr.Message)
	assert.True(t, IsCode(err, CodeURLExists))
	assert.False(t, IsCode(err, CodeInvalidURL))
	assert.Equal(t, "api error 8: URL already exists", err.Error())
}

func TestCode22Namespaces(t *testing.T) {
	payload, err := Parse([]byte(`{"response":{"result":{"code":22,"message":"Account updated"}}}`))
	require.NoError(t, err)
	code, ok := payload.ResultCode()
	require.True(t, ok)
	assert.Equal(t, CodeAccountUpdated, code)
	assert.Equal(t, "account updated", code.String())

	_, err = Parse([]byte(`{"response":{"error":{"code":22,"message":"Has active trial"}}}`))
	assert.True(t, IsCode(err, CodeHasActiveTrial))
	apiErr, _ := AsAPIError(err)
	assert.Equal(t, "has active trial account", apiErr.Code.String())
}

func TestPayloadHelpers(t *testing.T) {
	payload, err := Parse([]byte(`{"response":{"result":{"id":42,"name":"Acme"}}}`))
	require.NoError(t, err)

	raw, ok := payload.Result()
	require.True(t, ok)
	assert.Equal(t, `{"id":42,"name":"Acme"}`, string(raw))
	assert.Equal(t, int64(42), payload.Get("result.id").Int())

	var v struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, payload.Decode(&v))
	assert.Equal(t, 42, v.ID)
	assert.Equal(t, "Acme", v.Name)

	_, ok = payload.ResultCode()
	assert.False(t, ok)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"id":42,"name":"Acme"}}`, string(out))
}

func TestResultPreservedVerbatim(t *testing.T) {
	body := `{"response":{"result":{"b": 1.50, "a" :[true, null]}}}`
	payload, err := Parse([]byte(body))
	require.NoError(t, err)
	raw, _ := payload.Result()
	assert.Equal(t, `{"b": 1.50, "a" :[true, null]}`, string(raw))
}
