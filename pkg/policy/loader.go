package policy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Load reads all .rego files under policyDir and prepares the ingest
// and enrich queries. An empty policyDir or a directory without .rego
// files yields an allow-all engine.
func Load(ctx context.Context, policyDir string) (*Engine, error) {
	if policyDir == "" {
		return &Engine{}, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", policyDir))
	}
	if len(files) == 0 {
		return &Engine{}, nil
	}

	modules := make([]func(*rego.Rego), 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		modules = append(modules, rego.Module(file, string(data)))
	}

	ingest, err := prepareQuery(ctx, modules, "data.ingest")
	if err != nil {
		return nil, err
	}
	enrich, err := prepareQuery(ctx, modules, "data.enrich")
	if err != nil {
		return nil, err
	}

	return &Engine{ingest: ingest, enrich: enrich}, nil
}

// LoadModules prepares an engine from in-memory named Rego sources.
func LoadModules(ctx context.Context, sources map[string]string) (*Engine, error) {
	modules := make([]func(*rego.Rego), 0, len(sources))
	for name, src := range sources {
		modules = append(modules, rego.Module(name, src))
	}

	ingest, err := prepareQuery(ctx, modules, "data.ingest")
	if err != nil {
		return nil, err
	}
	enrich, err := prepareQuery(ctx, modules, "data.enrich")
	if err != nil {
		return nil, err
	}

	return &Engine{ingest: ingest, enrich: enrich}, nil
}

func prepareQuery(ctx context.Context, modules []func(*rego.Rego), query string) (*rego.PreparedEvalQuery, error) {
	options := make([]func(*rego.Rego), 0, len(modules)+1)
	options = append(options, rego.Query(query))
	options = append(options, modules...)

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare policy query", goerr.V("query", query))
	}

	return &prepared, nil
}
