package rules

import (
	"fmt"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

func frontendRules() []Rule {
	return []Rule{
		{
			ID:       "frontend-single-web",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Frontend),
			Writes:   stack.Frontend,
			Predicate: func(s stack.State) bool {
				return len(webFrameworksIn(s)) > 1
			},
			Autofix: func(s stack.State) stack.Selection {
				return append(stack.Of(webFrameworksIn(s)[0]), nativeFrameworksIn(s)...)
			},
			Message: func(s stack.State) string {
				return fmt.Sprintf("Only one web frontend can be selected (got %s).", names(webFrameworksIn(s)))
			},
			Suggestions: hints("Keep a single web framework and drop the others"),
		},
		{
			ID:       "frontend-single-native",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Frontend),
			Writes:   stack.Frontend,
			Predicate: func(s stack.State) bool {
				return len(nativeFrameworksIn(s)) > 1
			},
			Autofix: func(s stack.State) stack.Selection {
				return append(stack.Of(webFrameworksIn(s)...), nativeFrameworksIn(s)[0])
			},
			Message: func(s stack.State) string {
				return fmt.Sprintf("Only one native frontend can be selected (got %s).", names(nativeFrameworksIn(s)))
			},
			Suggestions: hints("Keep a single native framework"),
		},
		{
			ID:       "convex-frontend",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Frontend, stack.Backend),
			Writes:   stack.Frontend,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && s.Has(stack.Frontend, stack.Solid)
			},
			Autofix: drop(stack.Frontend, stack.Solid),
			Message: text("Solid is not compatible with the Convex backend."),
			Suggestions: hints(
				"Use a React-based frontend, Nuxt or Svelte with Convex",
				"Pick another backend to keep Solid",
			),
		},
	}
}
