package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
		wantErr  string
	}{
		{
			name:     "simple environment variable substitution",
			input:    "password: {{ .ENV.CAPI_SECRET }}",
			envVars:  map[string]string{"CAPI_SECRET": "secret123"},
			expected: "password: secret123",
		},
		{
			name:     "multiple environment variables",
			input:    "username: {{ .ENV.CAPI_USER }}\nbase_url: {{ .ENV.CAPI_URL }}",
			envVars:  map[string]string{"CAPI_USER": "api", "CAPI_URL": "https://api.example.com/"},
			expected: "username: api\nbase_url: https://api.example.com/",
		},
		{
			name:     "special characters and equals signs",
			input:    "password: {{ .ENV.CAPI_SECRET }}",
			envVars:  map[string]string{"CAPI_SECRET": "p@ss=w0rd!"},
			expected: "password: p@ss=w0rd!",
		},
		{
			name:     "empty environment variable",
			input:    "password: {{ .ENV.CAPI_EMPTY }}",
			envVars:  map[string]string{"CAPI_EMPTY": ""},
			expected: "password: ",
		},
		{
			name:     "no template variables",
			input:    "username: api\nretries: 2",
			expected: "username: api\nretries: 2",
		},
		{
			name:    "missing environment variable",
			input:   "password: {{ .ENV.CAPI_MISSING_VAR }}",
			wantErr: "missing environment variable: CAPI_MISSING_VAR",
		},
		{
			name:    "invalid template syntax",
			input:   "password: {{ .ENV.CAPI_SECRET }",
			wantErr: "template error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			result, err := PreprocessConfig([]byte(tt.input), t.TempDir())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestPreprocessConfigWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	envContent := "CAPI_SECRET=from_env_file\nCAPI_USER=file_user\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContent), 0600))

	// the environment wins over the .env file
	t.Setenv("CAPI_SECRET", "from_environment")

	input := "username: {{ .ENV.CAPI_USER }}\npassword: {{ .ENV.CAPI_SECRET }}"
	result, err := PreprocessConfig([]byte(input), dir)
	require.NoError(t, err)
	assert.Equal(t, "username: file_user\npassword: from_environment", string(result))

	// .env values never leak into the process environment
	_, set := os.LookupEnv("CAPI_USER")
	assert.False(t, set)
}

func TestPreprocessConfigNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		strings.Repeat("{{ .ENV.CAPI_X }}", 1000),
		"{{ .ENV.{{ .ENV.NESTED }}}}",
		"{{ .ENV.CAPI_X | len }}",
		"{{ range .ENV }}{{ . }}{{ end }}",
		"{{ .ENV. }}",
	}
	t.Setenv("CAPI_X", "value")
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, _ = PreprocessConfig([]byte(in), "")
		}, in)
	}
}
