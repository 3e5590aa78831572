package override

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSettings = `# Local overrides for AutoSimc. Copy of settings.py, edit freely.
import os

simc_path = r'/old/path/simc'
default_inputFileName = "input.simc"
default_outputFileName = "output.html"

auto_download_simc = False
`

func writeOverride(t *testing.T, content string) *Patcher {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings_local.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return &Patcher{
		Path:         path,
		TemplatePath: filepath.Join(dir, "settings.py"),
		Key:          "simc_path",
	}
}

func TestApplyRewritesTargetLine(t *testing.T) {
	p := writeOverride(t, "simc_path = r'/old/path/simc'\n")
	require.NoError(t, p.Apply("/home/user/lgit/simc/engine/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "simc_path = r'/home/user/lgit/simc/engine/simc'\n", string(data))
}

func TestApplyPreservesEveryOtherLine(t *testing.T) {
	p := writeOverride(t, sampleSettings)
	require.NoError(t, p.Apply("/home/user/lgit/simc/engine/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "patched_settings", data)

	// N-1 lines are byte-identical to the input.
	before := strings.Split(sampleSettings, "\n")
	after := strings.Split(string(data), "\n")
	require.Equal(t, len(before), len(after))
	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
		}
	}
	assert.Equal(t, 1, changed)
}

func TestApplyIsIdempotent(t *testing.T) {
	p := writeOverride(t, sampleSettings)
	require.NoError(t, p.Apply("/home/user/lgit/simc/engine/simc"))
	once, err := os.ReadFile(p.Path)
	require.NoError(t, err)

	require.NoError(t, p.Apply("/home/user/lgit/simc/engine/simc"))
	twice, err := os.ReadFile(p.Path)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
}

func TestApplyFallsBackToTemplateOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "settings.py")
	require.NoError(t, os.WriteFile(template, []byte(sampleSettings), 0644))

	p := &Patcher{
		Path:         filepath.Join(dir, "settings_local.py"),
		TemplatePath: template,
		Key:          "simc_path",
	}
	require.NoError(t, p.Apply("/home/user/lgit/simc/engine/simc"))

	// The override is created; the template is untouched.
	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simc_path = r'/home/user/lgit/simc/engine/simc'")

	tmplData, err := os.ReadFile(template)
	require.NoError(t, err)
	assert.Equal(t, sampleSettings, string(tmplData))
}

func TestApplyBothFilesMissing(t *testing.T) {
	dir := t.TempDir()
	p := &Patcher{
		Path:         filepath.Join(dir, "settings_local.py"),
		TemplatePath: filepath.Join(dir, "settings.py"),
		Key:          "simc_path",
	}
	err := p.Apply("/somewhere/simc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)
	assert.True(t, p.Missing(err))
}

func TestApplyKeyNotFound(t *testing.T) {
	p := writeOverride(t, "other_key = 1\nanother = 'x'\n")
	err := p.Apply("/somewhere/simc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, p.Missing(err))

	// A failed patch never rewrites the file.
	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "other_key = 1\nanother = 'x'\n", string(data))
}

func TestApplyKeepsDoubleQuoteConvention(t *testing.T) {
	p := writeOverride(t, `simc_path = r"/old/path/simc"`+"\n")
	require.NoError(t, p.Apply("/new/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, `simc_path = r"/new/simc"`+"\n", string(data))
}

func TestApplyPreservesMissingFinalNewline(t *testing.T) {
	p := writeOverride(t, "simc_path = r'/old'")
	require.NoError(t, p.Apply("/new/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "simc_path = r'/new/simc'", string(data))
}

func TestApplyPreservesCRLF(t *testing.T) {
	p := writeOverride(t, "keep_me = 1\r\nsimc_path = r'/old'\r\n")
	require.NoError(t, p.Apply("/new/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "keep_me = 1\r\nsimc_path = r'/new/simc'\r\n", string(data))
}

func TestApplyIgnoresSimilarKeyNames(t *testing.T) {
	p := writeOverride(t, "simc_path_backup = r'/keep'\nsimc_path = r'/old'\n")
	require.NoError(t, p.Apply("/new/simc"))

	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "simc_path_backup = r'/keep'\nsimc_path = r'/new/simc'\n", string(data))
}

func TestApplyLeavesNoTempFiles(t *testing.T) {
	p := writeOverride(t, sampleSettings)
	require.NoError(t, p.Apply("/new/simc"))

	entries, err := os.ReadDir(filepath.Dir(p.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings_local.py", entries[0].Name())
}
