// Copyright EpiMind Project, 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// executor abstracts command execution so tests can run without a
// tesseract installation.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %s", err, firstLine(msg))
		}
		return err
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Tesseract runs the tesseract binary in TSV mode, which yields both
// the recognized text and per-token confidences.
type Tesseract struct {
	cfg  types.OCRConfig
	exec executor
}

// NewTesseract returns an engine over the configured binary and
// language packs. Defaults: binary "tesseract", languages "ron+eng".
func NewTesseract(cfg types.OCRConfig) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "ron+eng"
	}
	return &Tesseract{cfg: cfg, exec: osExecutor{}}
}

// Recognize runs OCR on one image. The configured timeout, when set,
// bounds the invocation in addition to any deadline already on ctx.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (Text, error) {
	if _, err := t.exec.LookPath(t.cfg.Binary); err != nil {
		return Text{}, fmt.Errorf("%w: %s not found on PATH", ErrEngine, t.cfg.Binary)
	}

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	args := []string{imagePath, "stdout", "-l", t.cfg.Languages, "--psm", "6", "tsv"}

	var out bytes.Buffer
	if err := t.exec.RunPiped(ctx, t.cfg.Binary, args, &out); err != nil {
		if ctx.Err() != nil {
			return Text{}, fmt.Errorf("%w: timed out recognizing %s", ErrEngine, imagePath)
		}
		return Text{}, fmt.Errorf("%w: recognizing %s: %v", ErrEngine, imagePath, err)
	}

	text := parseTSV(out.String())
	if strings.TrimSpace(text.Content) == "" {
		return Text{}, fmt.Errorf("%w: no text recognized in %s", ErrEngine, imagePath)
	}
	return text, nil
}

// TSV column indices per tesseract's output format.
const (
	colLevel   = 0
	colLineNum = 4
	colConf    = 10
	colText    = 11
	tsvColumns = 12
	wordLevel  = 5
)

// parseTSV reconstructs line-structured text from tesseract TSV output
// and collects per-token confidences. Rows it cannot parse are skipped;
// recognition quality problems belong downstream, not here.
func parseTSV(raw string) Text {
	var text Text
	var b strings.Builder
	lastLine := ""

	for i, row := range strings.Split(raw, "\n") {
		if i == 0 { // header row
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		if cols[colLevel] != strconv.Itoa(wordLevel) {
			continue
		}
		word := strings.TrimSpace(cols[colText])
		if word == "" {
			continue
		}

		lineKey := cols[1] + ":" + cols[2] + ":" + cols[3] + ":" + cols[colLineNum]
		if b.Len() > 0 {
			if lineKey == lastLine {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		lastLine = lineKey
		b.WriteString(word)

		if conf, err := strconv.ParseFloat(cols[colConf], 64); err == nil && conf >= 0 {
			text.Tokens = append(text.Tokens, TokenConfidence{Token: word, Confidence: conf / 100})
		}
	}

	text.Content = b.String()
	return text
}
