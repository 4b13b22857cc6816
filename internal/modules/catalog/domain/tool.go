package domain

import (
	"fmt"

	apperrors "toolhub/internal/platform/errors"
)

// Tool is one catalog manifest entry. ScriptPath doubles as the cache
// key under which the script body is stored locally.
type Tool struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ScriptPath         string   `json:"scriptPath"`
	RequiresElevation  bool     `json:"requiresElevation"`
	RequiresConnection bool     `json:"requiresConnection"`
	Dependencies       []string `json:"dependencies"`
}

func (t Tool) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: tool id is required", apperrors.ErrInvalidInput)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: tool %q has no title", apperrors.ErrInvalidInput, t.ID)
	}
	if t.ScriptPath == "" {
		return fmt.Errorf("%w: tool %q has no script path", apperrors.ErrInvalidInput, t.ID)
	}
	for _, dep := range t.Dependencies {
		if dep == "" {
			return fmt.Errorf("%w: tool %q has an empty dependency", apperrors.ErrInvalidInput, t.ID)
		}
	}
	return nil
}

// Manifest is the catalog document served at manifest.json.
type Manifest struct {
	Tools []Tool `json:"tools"`
}

func (m Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Tools))
	for _, tool := range m.Tools {
		if err := tool.Validate(); err != nil {
			return err
		}
		if _, dup := seen[tool.ID]; dup {
			return fmt.Errorf("%w: duplicate tool id %q", apperrors.ErrInvalidInput, tool.ID)
		}
		seen[tool.ID] = struct{}{}
	}
	return nil
}
