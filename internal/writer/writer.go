// Package writer names and writes exported transcript documents.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// DefaultLabel is used when neither a project name nor a usable title exists.
const DefaultLabel = "PROYECTO"

const maxLabelRunes = 60

// FileWriter writes documents into one directory.
type FileWriter struct {
	outputDir string
	mu        sync.Mutex
}

// New creates the output directory if needed.
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string { return w.outputDir }

// WriteDocument writes doc as indented JSON under filename and returns the
// full path.
func (w *FileWriter) WriteDocument(doc transcript.Document, filename string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	path := filepath.Join(w.outputDir, filename)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// Filename is YYMMDD_<LABEL>_Transcripcion.json for the local date of now.
func Filename(label string, now time.Time) string {
	return fmt.Sprintf("%s_%s_Transcripcion.json", now.Format("060102"), Sanitize(label))
}

var boilerplate = regexp.MustCompile(`(?i)microsoft teams|microsoft stream|sharepoint|transcripción|transcripcion|transcript|grabación|grabacion|recording|reunión|reunion|meeting|\.mp4`)

// Label picks the filename label: the project name when given, else the
// page title without client boilerplate.
func Label(projectName, title string) string {
	if name := strings.TrimSpace(projectName); name != "" {
		return name
	}
	title = boilerplate.ReplaceAllString(title, " ")
	return strings.Trim(title, " \t-–|·:_,.()[]")
}

var (
	spaces      = regexp.MustCompile(`\s+`)
	underscores = regexp.MustCompile(`_{2,}`)
)

// Sanitize keeps Latin letters, digits, spaces, dashes and underscores,
// turns whitespace runs into underscores, uppercases and truncates.
func Sanitize(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case unicode.In(r, unicode.Latin), r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	s := strings.TrimSpace(b.String())
	s = spaces.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(strings.ToUpper(s), "_-")

	if r := []rune(s); len(r) > maxLabelRunes {
		s = strings.TrimRight(string(r[:maxLabelRunes]), "_-")
	}
	if s == "" {
		return DefaultLabel
	}
	return s
}
