package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"zoowatch/internal/submission/models"
)

// SubprocessExtractor shells out to the model runner. The command receives
// <audio-path> <date> <locale> <mime-type> and prints a JSON observation on
// stdout. The audio bytes are staged in a temp file that is always removed
// before Extract returns.
type SubprocessExtractor struct {
	command []string
	timeout time.Duration
	tempDir string
	logger  *slog.Logger
}

// NewSubprocess builds a subprocess extractor. command is the full invocation
// string, e.g. "python3 server/run_model.py"; timeout bounds each run.
func NewSubprocess(command string, timeout time.Duration, logger *slog.Logger) *SubprocessExtractor {
	return &SubprocessExtractor{
		command: strings.Fields(command),
		timeout: timeout,
		tempDir: os.TempDir(),
		logger:  logger,
	}
}

func (e *SubprocessExtractor) Extract(ctx context.Context, audio []byte, date, locale string) (*models.StructuredObservation, error) {
	if len(e.command) == 0 {
		return nil, NewError(CategoryUpstreamError, "extractor command not configured", nil)
	}

	audioPath := filepath.Join(e.tempDir, fmt.Sprintf("extract_%s.wav", uuid.NewString()))
	if err := os.WriteFile(audioPath, audio, 0o600); err != nil {
		return nil, NewError(CategoryUpstreamError, "stage audio for extractor", err)
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil {
			e.logger.Warn("failed to remove staged audio", "path", audioPath, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(e.command[1:], audioPath, date, locale, "audio/wav")
	cmd := exec.CommandContext(ctx, e.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, NewError(CategoryTimeout, fmt.Sprintf("extractor exceeded %s", e.timeout), ctx.Err())
	}
	if err != nil {
		return nil, NewError(CategoryUpstreamError, strings.TrimSpace(stderr.String()), err)
	}

	return decodeObservation(stdout.Bytes(), date)
}

// decodeObservation parses extractor stdout into an observation. The payload
// must be a JSON object; anything else is malformed output. The originating
// date always wins over whatever the model transcribed.
func decodeObservation(raw []byte, date string) (*models.StructuredObservation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, NewError(CategoryMalformedOutput, "extractor produced no output", nil)
	}

	var obs models.StructuredObservation
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&obs); err != nil {
		return nil, NewError(CategoryMalformedOutput, "decode extractor output", err)
	}

	// Some runner failures surface as {"error": "..."} on stdout.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, NewError(CategoryMalformedOutput, "extractor output is not an object", err)
	}
	if msg, ok := probe["error"]; ok {
		return nil, NewError(CategoryUpstreamError, "extractor reported error: "+string(msg), errors.New("runner error payload"))
	}

	obs.SchemaVersion = models.ObservationSchemaVersion
	obs.Date = date
	return &obs, nil
}
