package bridge

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rendis/opgraph/pkg/schema"
)

// ExecEngine runs the engine as an external process, one invocation per
// script batch. It only supports the files channel: results come back
// through the paths the script itself writes to, so Result and Release are
// contract errors. In-process embeddings that expose shared-memory handles
// supply their own Engine implementation.
type ExecEngine struct {
	binPath string
	tmpDir  string
	logger  *slog.Logger
}

// NewExecEngine creates an engine bridge around the engine binary at
// binPath. Scripts are staged under tmpDir before invocation.
func NewExecEngine(binPath, tmpDir string, logger *slog.Logger) *ExecEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecEngine{binPath: binPath, tmpDir: tmpDir, logger: logger}
}

// Execute writes the script to a temporary file and invokes the engine
// binary on it, blocking until the process exits.
func (e *ExecEngine) Execute(ctx context.Context, script string) error {
	path := filepath.Join(e.tmpDir, "script-"+uuid.NewString()+".dsl")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return schema.NewError(schema.ErrCodeStaging, "stage script file").WithCause(err)
	}

	cmd := exec.CommandContext(ctx, e.binPath, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeExecution, "engine invocation failed: %s",
			strings.TrimSpace(string(out))).WithCause(err)
	}

	e.logger.Debug("engine batch executed", "script", path, "bytes", len(script))
	return nil
}

// Result is unsupported: a subprocess engine cannot hand back in-process
// buffers.
func (e *ExecEngine) Result() (*ResultHandle, error) {
	return nil, schema.NewError(schema.ErrCodeChannel,
		"exec engine has no shared-memory results; use the files channel")
}

// Release is unsupported for the same reason as Result.
func (e *ExecEngine) Release(*ResultHandle) error {
	return schema.NewError(schema.ErrCodeChannel,
		"exec engine has no shared-memory results to release")
}
