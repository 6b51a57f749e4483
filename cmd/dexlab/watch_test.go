package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/config"
	"github.com/dexlab/dexlab/internal/rules"
)

func TestWatcher_ListsActiveRules(t *testing.T) {
	watchFormat = "text"
	path := filepath.Join(t.TempDir(), "team.json")
	require.NoError(t, os.WriteFile(path, []byte(testPokemon), 0o644))

	var out bytes.Buffer
	w := &watcher{
		path:    path,
		out:     &out,
		engine:  analytics.New(analytics.DefaultPolicy()),
		rules:   []config.Rule{{Name: "any-legend", Condition: "legendary_count > 0"}},
		tracker: rules.NewTracker(),
	}

	require.NoError(t, w.run())
	assert.Contains(t, out.String(), "FIRING")
	assert.Contains(t, out.String(), "Active: any-legend")

	out.Reset()
	require.NoError(t, w.run())
	assert.NotContains(t, out.String(), "FIRING")
	assert.Contains(t, out.String(), "Active: any-legend")

	noLegend := `[{"id": 4, "name": "Charmander", "types": ["Fire"], "captureRate": 45, "bst": 309, "gen": 1, "evolutionDepth": 1}]`
	require.NoError(t, os.WriteFile(path, []byte(noLegend), 0o644))
	out.Reset()
	require.NoError(t, w.run())
	assert.Contains(t, out.String(), "RESOLVED any-legend")
	assert.NotContains(t, out.String(), "Active:")
}
