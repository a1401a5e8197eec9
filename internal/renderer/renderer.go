// Package renderer provides the backends that turn diagram snippets into
// artifact files. The raster backend produces PNG images; the vector backend
// produces PDF for print formats and PNG otherwise.
package renderer

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/ankek/terraform-provider-diagrams/internal/cache"
	"github.com/ankek/terraform-provider-diagrams/internal/eval"
	"github.com/ankek/terraform-provider-diagrams/internal/parser"
	"github.com/ankek/terraform-provider-diagrams/internal/scene"
)

// build is the snippet pipeline shared by all backends: parse, check the
// cache, evaluate, and fit the drawing to the requested size.
func build(ctx context.Context, store *cache.Store, req Request) Outcome {
	logger := hclog.FromContext(ctx)

	prog, err := parser.ParseSnippet(req.Source)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			return Outcome{Status: StatusParseError, Message: parseErr.Detail(), Err: err}
		}
		return Outcome{Status: StatusParseError, Message: err.Error(), Err: err}
	}

	if req.Path != "" && store.Exists(req.Path) {
		logger.Debug("artifact already present", "path", req.Path)
		return Outcome{Status: StatusCacheHit}
	}

	node, err := eval.Evaluate(ctx, prog, req.Expression)
	if err != nil {
		var evalErr *eval.Error
		if errors.As(err, &evalErr) {
			return Outcome{Status: StatusEvalError, Message: evalErr.Detail(), Err: err}
		}
		return Outcome{Status: StatusEvalError, Message: err.Error(), Err: err}
	}

	sc := scene.Flatten(node).Normalize(req.Dimensions.Width, req.Dimensions.Height)
	logger.Debug("snippet evaluated", "items", len(sc.Items), "size", req.Dimensions.String())
	return Outcome{Status: StatusBuilt, Scene: sc}
}
