// Package hcladapter is the HCL implementation of the config.Loader
// interface: it discovers .hcl files, decodes their `worker` blocks and
// merges them into the format-agnostic flock model.
package hcladapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/flockgo/internal/config"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/fsutil"
	"github.com/vk/flockgo/internal/runnerspec"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL flock loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all supported top-level blocks from one file.
type fileRoot struct {
	Workers []*workerBlock `hcl:"worker,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// workerBlock is the raw HCL shape of a `worker "id" { ... }` block.
type workerBlock struct {
	ID     string         `hcl:"id,label"`
	Runner string         `hcl:"runner,optional"`
	Args   hcl.Expression `hcl:"args,optional"`
}

// Load reads every .hcl file under the given paths, in deterministic
// order, and merges all worker blocks into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	seen := make(map[string]string) // worker id → file it first appeared in
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, w := range root.Workers {
			def, err := l.translateWorker(w)
			if err != nil {
				return nil, fmt.Errorf("%s: worker %q: %w", file, w.ID, err)
			}
			if prev, dup := seen[def.ID]; dup {
				// Later blocks supersede earlier ones through normal put
				// semantics during replay; worth a warning all the same.
				logger.Warn("Duplicate worker id in flock declaration.", "id", def.ID, "first_seen", prev, "also_in", file)
			}
			seen[def.ID] = file
			model.Flock = append(model.Flock, def)
		}
	}

	logger.Debug("HCL loading complete.", "workers", len(model.Flock))
	return model, nil
}

// translateWorker converts a raw block into the format-agnostic model.
func (l *Loader) translateWorker(w *workerBlock) (*config.WorkerDef, error) {
	args, err := argsToNative(w.Args)
	if err != nil {
		return nil, err
	}
	return &config.WorkerDef{
		ID:     w.ID,
		Runner: w.Runner,
		Args:   args,
	}, nil
}

// argsToNative evaluates the `args` expression and converts the resulting
// object into runner arguments.
func argsToNative(expr hcl.Expression) (runnerspec.Args, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate args: %w", diags)
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("args must be an object, got %s", v.Type().FriendlyName())
	}
	native, err := ctyToNative(v)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("args did not decode to a map")
	}
	return runnerspec.Args(m), nil
}
