package rules

import (
	"fmt"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

func backendRules() []Rule {
	return []Rule{
		{
			ID:       "backend-next-requires-next-frontend",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Backend, stack.Frontend),
			Writes:   stack.Backend,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Backend, "next") && !s.Has(stack.Frontend, stack.Next)
			},
			Autofix:     to("hono"),
			Message:     text("The Next.js backend requires the Next.js frontend."),
			Suggestions: hints("Select Next.js as the web frontend", "Use Hono as a standalone backend"),
		},
		{
			ID:       "workers-backend",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Backend, stack.Runtime),
			Writes:   stack.Backend,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Runtime, "workers") && isOneOf(s.Value(stack.Backend), "express", "fastify", "elysia")
			},
			Autofix: to("hono"),
			Message: func(s stack.State) string {
				return fmt.Sprintf("The Cloudflare Workers runtime only supports the Hono backend (got %s).", DisplayName(s.Value(stack.Backend)))
			},
			Suggestions: hints("Use Hono on Workers", "Switch the runtime to Bun or Node.js"),
		},
	}
}

func runtimeRules() []Rule {
	return []Rule{
		{
			ID:       "convex-runtime",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Runtime, stack.Backend),
			Writes:   stack.Runtime,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && isSet(s, stack.Runtime)
			},
			Autofix:     toNone(),
			Message:     text("Convex manages its own runtime; runtime must be none."),
			Suggestions: hints("Set runtime to none"),
		},
		{
			ID:       "no-backend-runtime",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Runtime, stack.Backend),
			Writes:   stack.Runtime,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.Runtime)
			},
			Autofix:     toNone(),
			Message:     text("A runtime cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set runtime to none"),
		},
		{
			ID:       "backend-next-runtime",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Runtime, stack.Backend),
			Writes:   stack.Runtime,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Backend, "next") && isSet(s, stack.Runtime)
			},
			Autofix:     toNone(),
			Message:     text("The Next.js backend manages its own runtime; runtime must be none."),
			Suggestions: hints("Set runtime to none"),
		},
		{
			ID:       "runtime-required",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Runtime, stack.Backend),
			Writes:   stack.Runtime,
			Predicate: func(s stack.State) bool {
				return isServerBackend(s) && !isSet(s, stack.Runtime)
			},
			Autofix:     to("bun"),
			Message:     namef("The %s backend needs a runtime.", stack.Backend),
			Suggestions: hints("Select Bun, Node.js or Cloudflare Workers as the runtime"),
		},
		{
			ID:       "d1-requires-workers",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Runtime, stack.DBSetup, stack.Backend),
			Writes:   stack.Runtime,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.DBSetup, "d1") && isServerBackend(s) && !s.Is(stack.Runtime, "workers")
			},
			Autofix:     to("workers"),
			Message:     text("Cloudflare D1 requires the Cloudflare Workers runtime."),
			Suggestions: hints("Set runtime to workers", "Pick a different database provider"),
		},
	}
}
