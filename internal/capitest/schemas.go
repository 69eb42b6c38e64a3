package capitest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// bodySchemas describe the JSON bodies accepted by POST and PUT endpoints,
// keyed by "VERB path".
var bodySchemas = map[string]string{
	"POST price": `{
		"type": "object",
		"required": ["companies", "employees"],
		"properties": {
			"companies": {"type": "integer", "minimum": 0},
			"employees": {"type": "integer", "minimum": 0}
		}
	}`,
	"POST account/discount": `{
		"type": "object",
		"required": ["account", "percentage"],
		"properties": {
			"percentage": {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
			"months": {"type": "integer", "minimum": 0}
		}
	}`,
	"PUT account/discount": `{
		"type": "object",
		"required": ["account", "discount"],
		"properties": {
			"percentage": {"type": "number", "minimum": 0, "maximum": 100},
			"months": {"type": "integer", "minimum": 0}
		}
	}`,
	"PUT company/integration": `{
		"type": "object",
		"required": ["company", "integration", "enabled"],
		"properties": {
			"enabled": {"type": "boolean"}
		}
	}`,
	"POST user/notification": `{
		"type": "object",
		"required": ["user", "subject", "message"],
		"properties": {
			"user": {"type": "string", "minLength": 1},
			"subject": {"type": "string", "minLength": 1},
			"message": {"type": "string", "minLength": 1}
		}
	}`,
}

var compiledSchemas = compileSchemas()

func compileSchemas() map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, len(bodySchemas))
	for key, src := range bodySchemas {
		url := "inline://" + strings.ReplaceAll(key, " ", "/")
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
			panic(err)
		}
		out[key] = compiler.MustCompile(url)
	}
	return out
}

// validateParams rejects bodies that do not match the schema of their
// endpoint. Missing members are reported as an empty parameter, everything
// else as an invalid one.
func (s *Server) validateParams(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		schema, ok := compiledSchemas[r.Method+" "+normalize(r.URL.Path)]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		params := requestParams(r)
		doc := make(map[string]any, len(params))
		for k, v := range params {
			doc[k] = v
		}
		if err := schema.Validate(doc); err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("request rejected by schema")
			var ve *jsonschema.ValidationError
			if errors.As(err, &ve) && missingMember(ve) {
				sendErr(w, r, codeEmptyParameter, "Empty parameter")
				return
			}
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func missingMember(ve *jsonschema.ValidationError) bool {
	if strings.HasSuffix(ve.KeywordLocation, "/required") {
		return true
	}
	for _, c := range ve.Causes {
		if missingMember(c) {
			return true
		}
	}
	return false
}
