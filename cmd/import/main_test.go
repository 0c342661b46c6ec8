package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/internal/apperrors"
	"lexicon/internal/config"
	"lexicon/internal/database"
)

func TestConfirmer(t *testing.T) {
	tests := []struct {
		name      string
		assumeYes bool
		input     string
		want      bool
	}{
		{name: "flag", assumeYes: true, want: true},
		{name: "typed yes", input: "yes\n", want: true},
		{name: "typed yes without newline", input: "yes", want: true},
		{name: "typed y", input: "y\n"},
		{name: "typed YES", input: "YES\n", want: true},
		{name: "typed Yes with spaces", input: "  Yes \n", want: true},
		{name: "typed yesplease", input: "yesplease\n"},
		{name: "empty stdin", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := confirmer(tt.assumeYes, strings.NewReader(tt.input), &out)(context.Background(), 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "5")
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{Database: config.DatabaseConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "cli.db")}}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dictionary.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunImportsAndReportsProgress(t *testing.T) {
	cfg := testConfig(t)
	path := writeCSV(t, "word,definition\napple,a fruit\nbanana,\n ,empty word\ncherry,red fruit\ndate,sweet fruit\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, path, 2, nil, &out))

	assert.Contains(t, out.String(), "Imported 2 words...")
	assert.Contains(t, out.String(), "Imported 3 words...")
	assert.Contains(t, out.String(), "Successfully imported 3 words (2 skipped)")

	db, err := database.Connect(context.Background(), cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.Count(context.Background(), database.RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out.Reset()
	require.NoError(t, run(context.Background(), cfg, path, 2, confirmer(false, strings.NewReader("no\n"), &out), &out))
	assert.Contains(t, out.String(), "Import cancelled")
}

func TestRunMissingSource(t *testing.T) {
	cfg := testConfig(t)

	err := run(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.csv"), 2, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)

	_, statErr := os.Stat(cfg.Database.Path)
	assert.True(t, os.IsNotExist(statErr), "store must not be touched")
}
