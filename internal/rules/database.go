package rules

import (
	"fmt"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// provider describes a hosted database setup and the database it requires
type provider struct {
	id       string
	ruleID   string
	database string
	// server limits the provider to standalone server backends
	server bool
}

var providers = []provider{
	{id: "turso", ruleID: "turso-requires-sqlite", database: "sqlite"},
	{id: "d1", ruleID: "d1-requires-sqlite", database: "sqlite", server: true},
	{id: "neon", ruleID: "neon-requires-postgres", database: "postgres"},
	{id: "supabase", ruleID: "supabase-requires-postgres", database: "postgres"},
	{id: "prisma-postgres", ruleID: "prisma-postgres-requires-postgres", database: "postgres"},
	{id: "mongodb-atlas", ruleID: "atlas-requires-mongodb", database: "mongodb"},
}

func databaseRules() []Rule {
	rs := []Rule{
		{
			ID:       "convex-database",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Database, stack.Backend),
			Writes:   stack.Database,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && isSet(s, stack.Database)
			},
			Autofix:     toNone(),
			Message:     text("Convex provides its own database; database must be none."),
			Suggestions: hints("Set database to none"),
		},
		{
			ID:       "no-backend-database",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Database, stack.Backend),
			Writes:   stack.Database,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.Database)
			},
			Autofix:     toNone(),
			Message:     text("A database cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set database to none"),
		},
		{
			ID:       "mongoose-requires-mongodb",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.Database, stack.ORM, stack.Backend, stack.Runtime, stack.DBSetup),
			Writes:   stack.Database,
			Predicate: func(s stack.State) bool {
				implied := impliedDatabase(s.Value(stack.DBSetup))
				return s.Is(stack.ORM, "mongoose") &&
					!isSet(s, stack.Database) &&
					dbCapable(s) &&
					!s.Is(stack.Runtime, "workers") &&
					(implied == "" || implied == "mongodb")
			},
			Autofix:     to("mongodb"),
			Message:     text("Mongoose requires the MongoDB database."),
			Suggestions: hints("Select MongoDB as the database", "Pick Drizzle or Prisma instead"),
		},
	}

	for _, p := range providers {
		rs = append(rs, providerRule(p))
	}

	rs = append(rs, Rule{
		ID:       "workers-mongodb",
		Kind:     models.KindHardIncompatibility,
		Severity: models.SeverityHard,
		Reads:    reads(stack.Database, stack.Runtime, stack.DBSetup),
		Writes:   stack.Database,
		Predicate: func(s stack.State) bool {
			return s.Is(stack.Runtime, "workers") && s.Is(stack.Database, "mongodb")
		},
		Autofix: func(s stack.State) stack.Selection {
			implied := impliedDatabase(s.Value(stack.DBSetup))
			if implied != "" && implied != "mongodb" {
				return stack.Of(implied)
			}
			return stack.Of("sqlite")
		},
		Message:     text("MongoDB is not supported on the Cloudflare Workers runtime."),
		Suggestions: hints("Use SQLite or PostgreSQL on Workers", "Switch the runtime to Bun or Node.js"),
	})
	return rs
}

func providerRule(p provider) Rule {
	return Rule{
		ID:       p.ruleID,
		Kind:     models.KindHardIncompatibility,
		Severity: models.SeverityHard,
		Reads:    reads(stack.Database, stack.DBSetup, stack.Backend, stack.Runtime),
		Writes:   stack.Database,
		Predicate: func(s stack.State) bool {
			if !s.Is(stack.DBSetup, p.id) || s.Is(stack.Database, p.database) {
				return false
			}
			if p.server && !isServerBackend(s) {
				return false
			}
			if p.database == "mongodb" && s.Is(stack.Runtime, "workers") {
				return false
			}
			return dbCapable(s)
		},
		Autofix: to(p.database),
		Message: func(stack.State) string {
			return fmt.Sprintf("%s requires the %s database.", DisplayName(p.id), DisplayName(p.database))
		},
		Suggestions: func(stack.State) []string {
			return []string{fmt.Sprintf("Select %s as the database", DisplayName(p.database))}
		},
	}
}

func ormRules() []Rule {
	return []Rule{
		{
			ID:       "convex-orm",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Backend),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && isSet(s, stack.ORM)
			},
			Autofix:     toNone(),
			Message:     text("Convex has its own data layer; ORM must be none."),
			Suggestions: hints("Set orm to none"),
		},
		{
			ID:       "no-backend-orm",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Backend),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.ORM)
			},
			Autofix:     toNone(),
			Message:     text("An ORM cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set orm to none"),
		},
		{
			ID:       "orm-requires-database",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Database),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.ORM) && !isSet(s, stack.Database)
			},
			Autofix:     toNone(),
			Message:     namef("The %s ORM requires a database.", stack.ORM),
			Suggestions: hints("Select a database", "Set orm to none"),
		},
		{
			ID:       "database-requires-orm",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Database, stack.Backend),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.Database) && !isSet(s, stack.ORM) && dbCapable(s)
			},
			Autofix: func(s stack.State) stack.Selection {
				if s.Is(stack.Database, "mongodb") {
					return stack.Of("mongoose")
				}
				return stack.Of("drizzle")
			},
			Message:     text("An ORM is required when a database is selected."),
			Suggestions: hints("Select Drizzle or Prisma", "Select Mongoose for MongoDB"),
		},
		{
			ID:       "mongodb-orm",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Database),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.Database, "mongodb") && s.Is(stack.ORM, "drizzle")
			},
			Autofix:     to("prisma"),
			Message:     text("Drizzle does not support MongoDB; use Prisma or Mongoose."),
			Suggestions: hints("Select Prisma or Mongoose"),
		},
		{
			ID:       "mongoose-database",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.Database),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.ORM, "mongoose") && isSet(s, stack.Database) && !s.Is(stack.Database, "mongodb")
			},
			Autofix: to("drizzle"),
			Message: func(s stack.State) string {
				return fmt.Sprintf("Mongoose only works with MongoDB (got %s).", DisplayName(s.Value(stack.Database)))
			},
			Suggestions: hints("Select Drizzle or Prisma", "Switch the database to MongoDB"),
		},
		{
			ID:       "prisma-postgres-requires-prisma",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.ORM, stack.DBSetup, stack.Database, stack.Backend),
			Writes:   stack.ORM,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.DBSetup, "prisma-postgres") && s.Is(stack.Database, "postgres") &&
					!s.Is(stack.ORM, "prisma") && dbCapable(s)
			},
			Autofix:     to("prisma"),
			Message:     text("Prisma Postgres requires the Prisma ORM."),
			Suggestions: hints("Select Prisma as the ORM", "Pick Neon or Supabase for Postgres"),
		},
	}
}

func dbSetupRules() []Rule {
	return []Rule{
		{
			ID:       "convex-dbsetup",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Backend),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return isConvex(s) && isSet(s, stack.DBSetup)
			},
			Autofix:     toNone(),
			Message:     text("Convex hosts its own database; database setup must be none."),
			Suggestions: hints("Set dbSetup to none"),
		},
		{
			ID:       "no-backend-dbsetup",
			Kind:     models.KindUnsupportedForCategory,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Backend),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return !hasBackend(s) && isSet(s, stack.DBSetup)
			},
			Autofix:     toNone(),
			Message:     text("A database setup cannot be selected without a backend."),
			Suggestions: hints("Select a backend", "Set dbSetup to none"),
		},
		{
			ID:       "dbsetup-requires-database",
			Kind:     models.KindMissingRequirement,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Database),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return isSet(s, stack.DBSetup) && !isSet(s, stack.Database)
			},
			Autofix:     toNone(),
			Message:     namef("The %s database setup requires a database.", stack.DBSetup),
			Suggestions: hints("Select a database", "Set dbSetup to none"),
		},
		{
			ID:       "dbsetup-database-mismatch",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Database),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				implied := impliedDatabase(s.Value(stack.DBSetup))
				return implied != "" && isSet(s, stack.Database) && !s.Is(stack.Database, implied)
			},
			Autofix: toNone(),
			Message: func(s stack.State) string {
				return fmt.Sprintf("%s cannot host %s.", DisplayName(s.Value(stack.DBSetup)), DisplayName(s.Value(stack.Database)))
			},
			Suggestions: hints("Pick a database setup that matches the database"),
		},
		{
			ID:       "docker-sqlite",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Database),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.DBSetup, "docker") && s.Is(stack.Database, "sqlite")
			},
			Autofix:     toNone(),
			Message:     text("Docker setup is not available for SQLite."),
			Suggestions: hints("Use Turso for hosted SQLite", "Set dbSetup to none"),
		},
		{
			ID:       "docker-workers",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Runtime),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.DBSetup, "docker") && s.Is(stack.Runtime, "workers")
			},
			Autofix:     toNone(),
			Message:     text("Docker setup is not compatible with the Cloudflare Workers runtime."),
			Suggestions: hints("Use a hosted database provider on Workers"),
		},
		{
			ID:       "d1-requires-server-backend",
			Kind:     models.KindHardIncompatibility,
			Severity: models.SeverityHard,
			Reads:    reads(stack.DBSetup, stack.Backend),
			Writes:   stack.DBSetup,
			Predicate: func(s stack.State) bool {
				return s.Is(stack.DBSetup, "d1") && s.Is(stack.Backend, "next")
			},
			Autofix:     toNone(),
			Message:     text("Cloudflare D1 requires a standalone server backend on Workers."),
			Suggestions: hints("Use Hono on Workers with D1", "Pick Turso for hosted SQLite"),
		},
	}
}
