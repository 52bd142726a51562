package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Defaults(t *testing.T) {
	matcher, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		{"build", true},
		{"build/demo", true},
		{"install", true},
		{"log", true},
		{".git", true},
		{"src/demo/.git", true},
		{".colcon-nix", true},
		{"src", false},
		{"src/demo", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_WithUserFile(t *testing.T) {
	tmpDir := t.TempDir()
	ignoreContent := `
# 实验性的包
experimental
*_tmp
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, IgnoreFile), []byte(ignoreContent), 0644))

	matcher, err := NewMatcher(tmpDir)
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		{"build", true},
		{"experimental", true},
		{"src/experimental", true},
		{"src/scratch_tmp", true},
		{"src/demo", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}
