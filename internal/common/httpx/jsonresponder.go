// Package httpx provides helpers for servers that speak the envelope wire
// format: every body is {"response": {...}} with either a result or an
// error member.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the error member of an envelope.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Response any `json:"response"`
}

// SendJsonRsp sends a JSON response with the given status code. Pre-marshaled
// JSON may be passed as string or []byte.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	var msgJson []byte
	switch m := msg.(type) {
	case string:
		msgJson = []byte(m)
	case []byte:
		msgJson = m
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}

// SendResult wraps result in a success envelope.
func SendResult(ctx context.Context, w http.ResponseWriter, result any) {
	SendJsonRsp(ctx, w, http.StatusOK, envelope{Response: map[string]any{"result": result}})
}

// SendResponse sends fields directly under the response wrapper, for
// endpoints that do not use a result member.
func SendResponse(ctx context.Context, w http.ResponseWriter, fields map[string]any) {
	SendJsonRsp(ctx, w, http.StatusOK, envelope{Response: fields})
}

// SendError sends an error envelope. Business errors use 200 with the error
// in the body; statusCode lets callers mimic transport level failures too.
func SendError(ctx context.Context, w http.ResponseWriter, statusCode, code int, message string) {
	log.Ctx(ctx).Debug().Int("code", code).Str("message", message).Msg("sending error envelope")
	SendJsonRsp(ctx, w, statusCode, envelope{Response: map[string]any{
		"error": ErrorBody{Code: code, Message: message},
	}})
}
