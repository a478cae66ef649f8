package rules

import (
	"fmt"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// addonSupport lists the web frameworks an addon can be generated for
type addonSupport struct {
	addon      string
	frameworks []string
}

var webAddons = []addonSupport{
	{addon: "pwa", frameworks: []string{stack.TanstackRouter, stack.ReactRouter, stack.Solid, stack.Next}},
	{addon: "tauri", frameworks: []string{stack.TanstackRouter, stack.ReactRouter, stack.Nuxt, stack.Svelte, stack.Solid, stack.Next}},
}

func addonRules() []Rule {
	var rs []Rule
	for _, a := range webAddons {
		rs = append(rs, addonRequiresWeb(a), addonSupportedFrontends(a))
	}
	return rs
}

func addonRequiresWeb(a addonSupport) Rule {
	return Rule{
		ID:       a.addon + "-requires-web",
		Kind:     models.KindUnsupportedForCategory,
		Severity: models.SeverityHard,
		Reads:    reads(stack.Addons, stack.Frontend),
		Writes:   stack.Addons,
		Predicate: func(s stack.State) bool {
			return s.Has(stack.Addons, a.addon) && !hasWeb(s)
		},
		Autofix:     drop(stack.Addons, a.addon),
		Message:     text(fmt.Sprintf("The %s addon requires a web frontend.", DisplayName(a.addon))),
		Suggestions: hints("Select a web frontend", fmt.Sprintf("Remove the %s addon", a.addon)),
	}
}

func addonSupportedFrontends(a addonSupport) Rule {
	return Rule{
		ID:       a.addon + "-supported-frontends",
		Kind:     models.KindHardIncompatibility,
		Severity: models.SeverityHard,
		Reads:    reads(stack.Addons, stack.Frontend),
		Writes:   stack.Addons,
		Predicate: func(s stack.State) bool {
			return s.Has(stack.Addons, a.addon) && hasWeb(s) && !isOneOf(s.Web(), a.frameworks...)
		},
		Autofix: drop(stack.Addons, a.addon),
		Message: func(s stack.State) string {
			return fmt.Sprintf("The %s addon is not supported with %s.", DisplayName(a.addon), DisplayName(s.Web()))
		},
		Suggestions: func(stack.State) []string {
			return []string{fmt.Sprintf("Supported frontends: %s", names(a.frameworks))}
		},
	}
}

func exampleRules() []Rule {
	return []Rule{
		{
			ID:       "examples-require-backend",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Examples, stack.Backend),
			Writes:   stack.Examples,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.Examples)
			},
			Autofix:     to(),
			Message:     text("Examples require a backend."),
			Suggestions: hints("Select a backend", "Remove the examples"),
		},
		{
			ID:       "todo-requires-database",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Examples, stack.Database, stack.Backend),
			Writes:   stack.Examples,
			Predicate: func(s stack.State) bool {
				return s.Has(stack.Examples, "todo") && !isSet(s, stack.Database) && !isConvex(s)
			},
			Autofix:     drop(stack.Examples, "todo"),
			Message:     text("The todo example requires a database."),
			Suggestions: hints("Select a database", "Remove the todo example"),
		},
		{
			ID:       "todo-requires-api",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Examples, stack.API, stack.Backend),
			Writes:   stack.Examples,
			Predicate: func(s stack.State) bool {
				return s.Has(stack.Examples, "todo") && !isSet(s, stack.API) && !isConvex(s)
			},
			Autofix:     drop(stack.Examples, "todo"),
			Message:     text("The todo example requires an API layer."),
			Suggestions: hints("Select tRPC or oRPC", "Remove the todo example"),
		},
		{
			ID:       "ai-example-unsupported",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeveritySoft,
			Reads:    reads(stack.Examples, stack.Backend, stack.Frontend),
			Writes:   stack.Examples,
			Predicate: func(s stack.State) bool {
				return s.Has(stack.Examples, "ai") && (s.Is(stack.Backend, "elysia") || s.Has(stack.Frontend, stack.Solid))
			},
			Autofix:     drop(stack.Examples, "ai"),
			Message:     text("The AI example is not available with Elysia or Solid."),
			Suggestions: hints("Remove the ai example"),
		},
	}
}
