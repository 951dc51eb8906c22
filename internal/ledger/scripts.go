package ledger

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.num
var embeddedScripts embed.FS

// ScriptSet resolves script names to their Numscript sources. The sources are
// configuration artifacts: defaults ship embedded in the binary, and an
// operator-provided directory can override them without a rebuild.
type ScriptSet struct {
	sources map[string]string
}

// LoadScripts builds a ScriptSet from the embedded defaults, overlaying any
// .num files found in dir when dir is non-empty.
func LoadScripts(dir string) (*ScriptSet, error) {
	sources := make(map[string]string)

	entries, err := embeddedScripts.ReadDir("scripts")
	if err != nil {
		return nil, fmt.Errorf("read embedded scripts: %w", err)
	}
	for _, entry := range entries {
		data, err := embeddedScripts.ReadFile("scripts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded script %s: %w", entry.Name(), err)
		}
		sources[strings.TrimSuffix(entry.Name(), ".num")] = string(data)
	}

	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.num"))
		if err != nil {
			return nil, fmt.Errorf("scan script dir %s: %w", dir, err)
		}
		for _, match := range matches {
			data, err := os.ReadFile(match)
			if err != nil {
				return nil, fmt.Errorf("read script %s: %w", match, err)
			}
			name := strings.TrimSuffix(filepath.Base(match), ".num")
			sources[name] = string(data)
		}
	}

	return &ScriptSet{sources: sources}, nil
}

// Source returns the Numscript for a named script.
func (s *ScriptSet) Source(name string) (string, error) {
	src, ok := s.sources[name]
	if !ok {
		return "", &Error{Code: CodeValidation, Message: fmt.Sprintf("unknown script %q", name)}
	}
	return src, nil
}
