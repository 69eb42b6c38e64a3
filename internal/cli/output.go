package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"
)

// codeResult is the shape of results that only acknowledge an action.
type codeResult struct {
	Code    int    `mapstructure:"code"`
	Message string `mapstructure:"message"`
}

var titleCaser = cases.Title(language.English)

// printResult prints a raw result as YAML, or as JSON with --json. Results
// that carry a success code get a one line summary first.
func printResult(cmd *cobra.Command, raw json.RawMessage) error {
	out := cmd.OutOrStdout()
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}

	if jsonOutput {
		printJSON(out, map[string]any{"result": value})
		return nil
	}

	if summary, ok := summarize(value); ok {
		okLabel.Fprintf(out, "✓ %s\n", summary)
	}
	yamlBytes, err := yaml.JSONToYAML(raw)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(out, string(yamlBytes))
	return nil
}

// summarize renders results such as {"code":14,"message":"Success"}.
func summarize(value any) (string, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	if _, ok := m["code"]; !ok {
		return "", false
	}
	var r codeResult
	if err := mapstructure.WeakDecode(m, &r); err != nil || r.Code == 0 {
		return "", false
	}
	name := titleCaser.String(capi.SuccessCode(r.Code).String())
	if r.Message == "" || strings.EqualFold(r.Message, name) {
		return name, true
	}
	return fmt.Sprintf("%s: %s", name, r.Message), true
}

// normalizeLanguage accepts any BCP 47 tag and returns its base language,
// e.g. "nl-BE" becomes "nl".
func normalizeLanguage(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", lang, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// languageFlag resolves the --language flag, falling back to the configured
// default and then to capi.DefaultLanguage.
func languageFlag(cmd *cobra.Command) (string, error) {
	lang, _ := cmd.Flags().GetString("language")
	if lang == "" && GetConfig() != nil {
		lang = GetConfig().Language
	}
	if lang == "" {
		return capi.DefaultLanguage, nil
	}
	return normalizeLanguage(lang)
}
