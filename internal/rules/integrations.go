package rules

import (
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// TRPCRequiresReact is the message shown when tRPC meets a non-React frontend
const TRPCRequiresReact = "tRPC API requires React-based frontends."

func apiRules() []Rule {
	return []Rule{
		{
			ID:       "convex-api",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.API, stack.Backend),
			Writes:   stack.API,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && isSet(s, stack.API)
			},
			Autofix:     toNone(),
			Message:     text("Convex provides its own API layer; api must be none."),
			Suggestions: hints("Set api to none"),
		},
		{
			ID:       "no-backend-api",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.API, stack.Backend),
			Writes:   stack.API,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.API)
			},
			Autofix:     toNone(),
			Message:     text("An API layer cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set api to none"),
		},
		{
			ID:       "trpc-requires-react",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.API, stack.Frontend),
			Writes:   stack.API,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.API, "trpc") && hasNonReactWeb(s)
			},
			Autofix:     to("orpc"),
			Message:     text(TRPCRequiresReact),
			Suggestions: hints("Use oRPC with Nuxt, Svelte or Solid", "Pick a React-based frontend to keep tRPC"),
		},
	}
}

func authRules() []Rule {
	return []Rule{
		{
			ID:       "no-backend-auth",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Auth, stack.Backend),
			Writes:   stack.Auth,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.Auth)
			},
			Autofix:     toNone(),
			Message:     text("Authentication cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set auth to none"),
		},
		{
			ID:       "better-auth-requires-database",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Auth, stack.Database, stack.Backend),
			Writes:   stack.Auth,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Auth, "better-auth") && !isSet(s, stack.Database) && !isConvex(s)
			},
			Autofix:     toNone(),
			Message:     text("Better Auth requires a database."),
			Suggestions: hints("Select a database", "Set auth to none"),
		},
		{
			ID:       "clerk-requires-convex",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Auth, stack.Backend),
			Writes:   stack.Auth,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Auth, "clerk") && !isConvex(s)
			},
			Autofix:     toNone(),
			Message:     text("Clerk authentication is only available with the Convex backend."),
			Suggestions: hints("Use Better Auth", "Switch the backend to Convex"),
		},
		{
			ID:       "clerk-requires-react",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Auth, stack.Frontend),
			Writes:   stack.Auth,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Auth, "clerk") && hasNonReactWeb(s)
			},
			Autofix:     toNone(),
			Message:     text("Clerk requires a React-based web frontend."),
			Suggestions: hints("Pick a React-based frontend", "Set auth to none"),
		},
	}
}

func paymentsRules() []Rule {
	return []Rule{
		{
			ID:       "polar-requires-better-auth",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Payments, stack.Auth),
			Writes:   stack.Payments,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Payments, "polar") && !s.Is(stack.Auth, "better-auth")
			},
			Autofix:     toNone(),
			Message:     text("Polar payments require Better Auth."),
			Suggestions: hints("Select Better Auth", "Set payments to none"),
		},
		{
			ID:       "polar-requires-web-frontend",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Payments, stack.Frontend),
			Writes:   stack.Payments,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Payments, "polar") && !hasWeb(s)
			},
			Autofix:     toNone(),
			Message:     text("Polar payments require a web frontend."),
			Suggestions: hints("Select a web frontend", "Set payments to none"),
		},
	}
}
