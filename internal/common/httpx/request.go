package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var ErrUnableToParseReqData = errors.New("unable to parse request data")

// GetRequestParams returns the parameters of a request: the query string for
// GET and DELETE, the JSON object body for POST and PUT. Query values are
// strings; body values keep their JSON types with numbers as json.Number.
func GetRequestParams(r *http.Request) (map[string]any, error) {
	params := map[string]any{}
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				params[k] = vs[0]
			}
		}
		return params, nil
	}
	if r.Body == nil {
		return params, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrUnableToParseReqData
	}
	return params, nil
}
