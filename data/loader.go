package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/logger"
)

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

type QuizLevel struct {
	Level     int            `json:"level"`
	Label     string         `json:"label"`
	Questions []QuizQuestion `json:"questions"`
}

type MillionaireQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

type MillionaireLevel struct {
	Level     int                   `json:"level"`
	Prize     string                `json:"prize"`
	Questions []MillionaireQuestion `json:"questions"`
}

type quizFile struct {
	Levels []QuizLevel `json:"levels"`
}

type millionaireFile struct {
	Levels []MillionaireLevel `json:"levels"`
}

type themeData struct {
	wheel       []engine.Phrase
	quiz        []QuizLevel
	millionaire []MillionaireLevel
}

// Loader holds every theme's game data, read once at startup from
// <dir>/<theme>/{wheel,quiz,millionaire}.json. Lookups fall back to the
// default theme per data type, so a theme can override just one game.
type Loader struct {
	defaultTheme string
	themes       map[string]*themeData
}

func Load(dir, defaultTheme string) (*Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}

	l := &Loader{
		defaultTheme: defaultTheme,
		themes:       make(map[string]*themeData),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		theme := entry.Name()
		td := &themeData{}
		themeDir := filepath.Join(dir, theme)

		if err := readJSON(filepath.Join(themeDir, "wheel.json"), &td.wheel); err != nil {
			logger.Log.Warnf("Theme %s: %v", theme, err)
		} else {
			logger.Log.Infof("Theme %s: loaded %d wheel phrases", theme, len(td.wheel))
		}

		var qf quizFile
		if err := readJSON(filepath.Join(themeDir, "quiz.json"), &qf); err != nil {
			logger.Log.Warnf("Theme %s: %v", theme, err)
		} else {
			td.quiz = qf.Levels
			logger.Log.Infof("Theme %s: loaded %d quiz levels", theme, len(td.quiz))
		}

		var mf millionaireFile
		if err := readJSON(filepath.Join(themeDir, "millionaire.json"), &mf); err != nil {
			logger.Log.Warnf("Theme %s: %v", theme, err)
		} else {
			td.millionaire = mf.Levels
			logger.Log.Infof("Theme %s: loaded %d millionaire levels", theme, len(td.millionaire))
		}

		l.themes[theme] = td
	}

	if len(l.themes) == 0 {
		return nil, fmt.Errorf("no theme directories under %s", dir)
	}
	return l, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (l *Loader) DefaultTheme() string {
	return l.defaultTheme
}

// Themes lists every loaded theme, sorted.
func (l *Loader) Themes() []string {
	names := make([]string, 0, len(l.themes))
	for name := range l.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PhrasePool returns the theme's wheel phrases, falling back to the
// default theme when the requested one has none.
func (l *Loader) PhrasePool(theme string) []engine.Phrase {
	if td, ok := l.themes[theme]; ok && len(td.wheel) > 0 {
		return td.wheel
	}
	if td, ok := l.themes[l.defaultTheme]; ok {
		return td.wheel
	}
	return nil
}

func (l *Loader) QuizLevels(theme string) []QuizLevel {
	if td, ok := l.themes[theme]; ok && len(td.quiz) > 0 {
		return td.quiz
	}
	if td, ok := l.themes[l.defaultTheme]; ok {
		return td.quiz
	}
	return nil
}

func (l *Loader) MillionaireLevels(theme string) []MillionaireLevel {
	if td, ok := l.themes[theme]; ok && len(td.millionaire) > 0 {
		return td.millionaire
	}
	if td, ok := l.themes[l.defaultTheme]; ok {
		return td.millionaire
	}
	return nil
}

// QuizQuestionCount is the number of questions a quiz run will step
// through: one per level.
func (l *Loader) QuizQuestionCount(theme string) int {
	return len(l.QuizLevels(theme))
}
