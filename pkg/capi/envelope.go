package capi

import (
	"encoding/json"
	"fmt"

	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var jsonCodec = jsonitor.ConfigCompatibleWithStandardLibrary

// Payload is the content of the response wrapper of a successful envelope.
// Its shape depends on the endpoint; most endpoints put their data under
// "result".
type Payload json.RawMessage

// Envelope is a decoded response body: either Payload is set or Err is.
type Envelope struct {
	Payload Payload
	Err     *APIError
}

// DecodeEnvelope decodes a raw body into its success or error branch. It fails
// with ErrMalformedResponse when body is not JSON and with ErrInvalidEnvelope
// when it is JSON but not wrapped in a response object.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var top map[string]json.RawMessage
	if err := jsonCodec.Unmarshal(body, &top); err != nil {
		if !gjson.ValidBytes(body) {
			return nil, ErrMalformedResponse.MsgErr(fmt.Sprintf("malformed response: %v", err), err)
		}
		return nil, ErrInvalidEnvelope.New("object is not a valid API response: top level is not an object")
	}
	raw, ok := top["response"]
	if !ok {
		return nil, ErrInvalidEnvelope.New("object is not a valid API response: missing response")
	}

	if !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrInvalidEnvelope.New("object is not a valid API response: response is not an object")
	}
	// Any error member, null included, selects the error branch.
	if e := gjson.GetBytes(raw, "error"); e.Exists() {
		if !e.IsObject() {
			return nil, ErrInvalidEnvelope.New("object is not a valid API response: error is not an object")
		}
		apiErr := &APIError{}
		if err := jsonCodec.Unmarshal([]byte(e.Raw), apiErr); err != nil {
			return nil, ErrInvalidEnvelope.MsgErr(fmt.Sprintf("object is not a valid API response: %v", err), err)
		}
		return &Envelope{Err: apiErr}, nil
	}
	return &Envelope{Payload: Payload(raw)}, nil
}

// Parse decodes body and returns the success payload, or the error the
// envelope carries. Business errors are returned as *APIError.
func Parse(body []byte) (Payload, error) {
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Err != nil {
		return nil, env.Err
	}
	return env.Payload, nil
}

// Result returns the raw "result" member of the payload exactly as sent.
func (p Payload) Result() (json.RawMessage, bool) {
	r := gjson.GetBytes(p, "result")
	if !r.Exists() {
		return nil, false
	}
	return json.RawMessage(r.Raw), true
}

// ResultOrPayload returns the "result" member, or the whole payload when the
// endpoint does not wrap its data in "result".
func (p Payload) ResultOrPayload() json.RawMessage {
	if r, ok := p.Result(); ok {
		return r
	}
	return json.RawMessage(p)
}

// Get looks up a gjson path in the payload, e.g. "result.code".
func (p Payload) Get(path string) gjson.Result {
	return gjson.GetBytes(p, path)
}

// Decode unmarshals the result (or the payload if there is no result) into v.
func (p Payload) Decode(v any) error {
	if err := jsonCodec.Unmarshal(p.ResultOrPayload(), v); err != nil {
		return ErrInvalidEnvelope.MsgErr(fmt.Sprintf("unable to decode result: %v", err), err)
	}
	return nil
}

// ResultCode returns result.code read from the success branch.
func (p Payload) ResultCode() (SuccessCode, bool) {
	r := p.Get("result.code")
	if r.Type != gjson.Number {
		return 0, false
	}
	return SuccessCode(r.Int()), true
}

// MarshalJSON returns the payload unchanged.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}
