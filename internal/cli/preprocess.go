package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// PreprocessConfig replaces {{ .ENV.VAR }} placeholders with values from the
// environment or from a .env file. The .env files of dir and of the working
// directory are read without modifying the process environment; variables
// set in the environment win over both.
func PreprocessConfig(inputRaw []byte, dir string) ([]byte, error) {
	if !bytes.Contains(inputRaw, []byte("{{")) {
		return inputRaw, nil
	}

	envMap := map[string]string{}
	for _, d := range envDirs(dir) {
		vals, err := godotenv.Read(filepath.Join(d, ".env"))
		if err != nil {
			continue // no .env there
		}
		for k, v := range vals {
			if _, ok := envMap[k]; !ok {
				envMap[k] = v
			}
		}
	}
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			envMap[k] = v
		}
	}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(inputRaw))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, TemplateContext{ENV: envMap}); err != nil {
		matches := missingKeyRegex.FindStringSubmatch(err.Error())
		if len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return output.Bytes(), nil
}

func envDirs(dir string) []string {
	var dirs []string
	if dir != "" {
		dirs = append(dirs, dir)
	}
	if cwd, err := os.Getwd(); err == nil && cwd != dir {
		dirs = append(dirs, cwd)
	}
	return dirs
}
