package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/serene/internal/bootstrap"
	"github.com/PabloGalante/serene/internal/config"
	"github.com/PabloGalante/serene/internal/observability"
)

// openApp loads the same configuration as the API server. Logs go to
// stderr so they never mix with command output.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.Init(os.Stderr, cfg.LogLevel)
	if cfg.StorageBackend == "memory" {
		fmt.Fprintln(os.Stderr, "warning: memory storage is empty on every run, set SERENE_STORAGE_BACKEND=sqlite")
	}
	return bootstrap.New(ctx, cfg)
}

// render writes v as json or yaml. The yaml form keeps the json field
// names by going through a generic value first.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q (text, json or yaml)", format)
	}
}
