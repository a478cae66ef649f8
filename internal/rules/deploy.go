package rules

import (
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

func deployRules() []Rule {
	return []Rule{
		{
			ID:       "webdeploy-requires-web",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeveritySoft,
			Reads:    reads(stack.WebDeploy, stack.Frontend),
			Writes:   stack.WebDeploy,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.WebDeploy) && !hasWeb(s)
			},
			Autofix:     toNone(),
			Message:     text("Web deployment requires a web frontend."),
			Suggestions: hints("Select a web frontend", "Set webDeploy to none"),
		},
		{
			ID:       "serverdeploy-requires-server",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeveritySoft,
			Reads:    reads(stack.ServerDeploy, stack.Backend),
			Writes:   stack.ServerDeploy,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.ServerDeploy) && !isServerBackend(s)
			},
			Autofix:     toNone(),
			Message:     text("Server deployment requires a standalone server backend."),
			Suggestions: hints("Select Hono, Express, Fastify or Elysia", "Set serverDeploy to none"),
		},
		{
			ID:       "serverdeploy-requires-workers-runtime",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ServerDeploy, stack.Backend, stack.Runtime),
			Writes:   stack.ServerDeploy,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.ServerDeploy) && isServerBackend(s) && !s.Is(stack.Runtime, "workers")
			},
			Autofix:     toNone(),
			Message:     namef("Server deployment to %s requires the Cloudflare Workers runtime.", stack.ServerDeploy),
			Suggestions: hints("Set runtime to workers", "Set serverDeploy to none"),
		},
	}
}

func toolingRules() []Rule {
	return []Rule{
		{
			ID:          "package-manager-required",
			Kind:        models.KindMissingRequirement,
			Severity:    models.SeveritySoft,
			Reads:       reads(stack.PackageManager),
			Writes:      stack.PackageManager,
			Predicate:   func(s stack.State) bool { return !isSet(s, stack.PackageManager) },
			Autofix:     to("bun"),
			Message:     text("A package manager is required; defaulting to Bun."),
			Suggestions: hints("Select npm, pnpm or Bun"),
		},
	}
}
