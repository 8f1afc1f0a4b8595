// Command opgraph runs a DSL script file through the exec bridge. It is a
// smoke-test harness for engine setups, not part of the library surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rendis/opgraph/pkg/bridge"
	"github.com/rendis/opgraph/pkg/opgraph"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: opgraph <script.dsl>")
		os.Exit(2)
	}

	cfg := opgraph.LoadConfig()

	script, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "read script:", err)
		os.Exit(1)
	}

	tmpDir := cfg.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	engine := bridge.NewExecEngine(cfg.EngineBin, tmpDir, cfg.Logger)
	if err := engine.Execute(context.Background(), string(script)); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}
