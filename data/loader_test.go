package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafgames/roletrando/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "default", "wheel.json"),
		`[{"category":"Comida","phrase":"ARROZ COM FEIJAO"},{"category":"Lugar","phrase":"PRAIA"}]`)
	writeFile(t, filepath.Join(dir, "default", "quiz.json"),
		`{"levels":[{"level":1,"label":"Fácil","questions":[{"question":"Q1","options":["a","b"],"answer":0}]},{"level":2,"label":"Médio","questions":[{"question":"Q2","options":["a","b"],"answer":1}]}]}`)
	writeFile(t, filepath.Join(dir, "default", "millionaire.json"),
		`{"levels":[{"level":1,"prize":"R$ 1.000","questions":[{"question":"M1","options":["a","b","c","d"],"answer":2}]}]}`)

	// Partial theme: overrides only the wheel phrases.
	writeFile(t, filepath.Join(dir, "festa", "wheel.json"),
		`[{"category":"Festa","phrase":"CARNAVAL"}]`)

	return dir
}

func TestLoadReadsAllThemes(t *testing.T) {
	loader, err := Load(newTestDataDir(t), "default")
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "festa"}, loader.Themes())
	assert.Equal(t, "default", loader.DefaultTheme())
}

func TestLoadFailsOnEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir(), "default")
	assert.Error(t, err)
}

func TestLoadFailsOnMissingDir(t *testing.T) {
	_, err := Load("/nonexistent/path", "default")
	assert.Error(t, err)
}

func TestPhrasePool(t *testing.T) {
	loader, err := Load(newTestDataDir(t), "default")
	require.NoError(t, err)

	pool := loader.PhrasePool("festa")
	require.Len(t, pool, 1)
	assert.Equal(t, "CARNAVAL", pool[0].Phrase)

	pool = loader.PhrasePool("default")
	assert.Len(t, pool, 2)
}

func TestPhrasePoolFallsBackToDefault(t *testing.T) {
	loader, err := Load(newTestDataDir(t), "default")
	require.NoError(t, err)

	pool := loader.PhrasePool("nope")
	assert.Len(t, pool, 2)
}

func TestQuizLevelsFallBackPerDataType(t *testing.T) {
	loader, err := Load(newTestDataDir(t), "default")
	require.NoError(t, err)

	// festa has no quiz file, so quiz lookups use the default theme.
	levels := loader.QuizLevels("festa")
	require.Len(t, levels, 2)
	assert.Equal(t, "Fácil", levels[0].Label)

	assert.Equal(t, 2, loader.QuizQuestionCount("festa"))
}

func TestMillionaireLevels(t *testing.T) {
	loader, err := Load(newTestDataDir(t), "default")
	require.NoError(t, err)

	levels := loader.MillionaireLevels("default")
	require.Len(t, levels, 1)
	assert.Equal(t, "R$ 1.000", levels[0].Prize)
	assert.Equal(t, 2, levels[0].Questions[0].Answer)
}

func TestLoadToleratesMalformedFile(t *testing.T) {
	dir := newTestDataDir(t)
	writeFile(t, filepath.Join(dir, "quebrado", "wheel.json"), `{not json`)

	loader, err := Load(dir, "default")
	require.NoError(t, err)

	// The broken theme exists but serves default data.
	assert.Contains(t, loader.Themes(), "quebrado")
	assert.Len(t, loader.PhrasePool("quebrado"), 2)
}
