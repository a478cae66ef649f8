package rules

import (
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/stack"
)

// Backends that run as a standalone server process
var serverBackends = []string{"hono", "express", "fastify", "elysia"}

var displayNames = map[string]string{
	"tanstack-router":   "TanStack Router",
	"react-router":      "React Router",
	"tanstack-start":    "TanStack Start",
	"next":              "Next.js",
	"nuxt":              "Nuxt",
	"svelte":            "Svelte",
	"solid":             "Solid",
	"native-nativewind": "React Native (NativeWind)",
	"native-unistyles":  "React Native (Unistyles)",
	"hono":              "Hono",
	"express":           "Express",
	"fastify":           "Fastify",
	"elysia":            "Elysia",
	"convex":            "Convex",
	"bun":               "Bun",
	"node":              "Node.js",
	"workers":           "Cloudflare Workers",
	"sqlite":            "SQLite",
	"postgres":          "PostgreSQL",
	"mysql":             "MySQL",
	"mongodb":           "MongoDB",
	"drizzle":           "Drizzle",
	"prisma":            "Prisma",
	"mongoose":          "Mongoose",
	"turso":             "Turso",
	"d1":                "Cloudflare D1",
	"neon":              "Neon",
	"supabase":          "Supabase",
	"prisma-postgres":   "Prisma Postgres",
	"mongodb-atlas":     "MongoDB Atlas",
	"docker":            "Docker",
	"trpc":              "tRPC",
	"orpc":              "oRPC",
	"better-auth":       "Better Auth",
	"clerk":             "Clerk",
	"polar":             "Polar",
	"pwa":               "PWA",
	"tauri":             "Tauri",
	"alchemy":           "Alchemy",
	"todo":              "Todo",
	"ai":                "AI",
}

// DisplayName returns the human-facing name of a value
func DisplayName(v string) string {
	if n, ok := displayNames[v]; ok {
		return n
	}
	return v
}

func isOneOf(v string, values ...string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func isServerBackend(s stack.State) bool {
	return isOneOf(s.Value(stack.Backend), serverBackends...)
}

// dbCapable reports whether the backend can own a database connection
func dbCapable(s stack.State) bool {
	return isServerBackend(s) || s.Is(stack.Backend, "next")
}

func hasBackend(s stack.State) bool {
	return !s.Is(stack.Backend, stack.None)
}

func isConvex(s stack.State) bool {
	return s.Is(stack.Backend, "convex")
}

func hasWeb(s stack.State) bool {
	return s.Web() != stack.None
}

// hasNonReactWeb reports whether a non-React web framework is selected
func hasNonReactWeb(s stack.State) bool {
	for _, v := range s.Get(stack.Frontend) {
		if stack.IsWebFramework(v) && !stack.IsReactWebFramework(v) {
			return true
		}
	}
	return false
}

func isSet(s stack.State, id stack.CategoryID) bool {
	return !s.Get(id).IsNone()
}

// impliedDatabase maps a database provider to the database it hosts. Docker
// and None imply nothing.
func impliedDatabase(dbSetup string) string {
	switch dbSetup {
	case "turso", "d1":
		return "sqlite"
	case "neon", "supabase", "prisma-postgres":
		return "postgres"
	case "mongodb-atlas":
		return "mongodb"
	default:
		return ""
	}
}

func webFrameworksIn(s stack.State) []string {
	web, _ := stack.SplitFrontend(s.Get(stack.Frontend))
	return web
}

func nativeFrameworksIn(s stack.State) []string {
	_, native := stack.SplitFrontend(s.Get(stack.Frontend))
	return native
}

// to returns an autofix that sets the category to fixed values
func to(values ...string) func(stack.State) stack.Selection {
	return func(stack.State) stack.Selection {
		return stack.Of(values...)
	}
}

// toNone returns an autofix that clears the category
func toNone() func(stack.State) stack.Selection {
	return to(stack.None)
}

// drop returns an autofix that removes v from a set category
func drop(id stack.CategoryID, v string) func(stack.State) stack.Selection {
	return func(s stack.State) stack.Selection {
		return s.Get(id).Without(v)
	}
}

func text(msg string) func(stack.State) string {
	return func(stack.State) string {
		return msg
	}
}

func hints(lines ...string) func(stack.State) []string {
	return func(stack.State) []string {
		return append([]string(nil), lines...)
	}
}

func names(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = DisplayName(v)
	}
	return strings.Join(out, ", ")
}

func namef(format string, id stack.CategoryID) func(stack.State) string {
	return func(s stack.State) string {
		return fmt.Sprintf(format, DisplayName(s.Value(id)))
	}
}

func reads(ids ...stack.CategoryID) []stack.CategoryID {
	return ids
}
