package domain

import (
	"errors"
	"testing"

	apperrors "toolhub/internal/platform/errors"
)

func validTool() Tool {
	return Tool{
		ID:         "reindex-stock",
		Title:      "Reindex stock tables",
		ScriptPath: "scripts/reindex-stock.ps1",
	}
}

func TestToolValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Tool)
		ok     bool
	}{
		{"valid", func(*Tool) {}, true},
		{"missing id", func(tl *Tool) { tl.ID = "" }, false},
		{"missing title", func(tl *Tool) { tl.Title = "" }, false},
		{"missing script path", func(tl *Tool) { tl.ScriptPath = "" }, false},
		{"empty dependency", func(tl *Tool) { tl.Dependencies = []string{"modules/helper.psm1", ""} }, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tool := validTool()
			tc.mutate(&tool)
			err := tool.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok && !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("Validate = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestManifestRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	m := Manifest{Tools: []Tool{validTool(), validTool()}}
	if err := m.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("Validate = %v, want ErrInvalidInput", err)
	}
}
