// Package stack declares the configuration categories a project is assembled
// from and the State value the rule engine reasons over.
//
// Categories are listed in evaluation order: upstream choices (frontend,
// backend, runtime) come before the categories that depend on them
// (database, ORM, API, auth, addons, deployment). The order is total and is
// what makes validation and propagation deterministic.
package stack

// CategoryID identifies one configurable dimension of a project
type CategoryID string

const (
	Frontend       CategoryID = "frontend"
	Backend        CategoryID = "backend"
	Runtime        CategoryID = "runtime"
	Database       CategoryID = "database"
	ORM            CategoryID = "orm"
	DBSetup        CategoryID = "dbSetup"
	API            CategoryID = "api"
	Auth           CategoryID = "auth"
	Payments       CategoryID = "payments"
	Addons         CategoryID = "addons"
	Examples       CategoryID = "examples"
	WebDeploy      CategoryID = "webDeploy"
	ServerDeploy   CategoryID = "serverDeploy"
	PackageManager CategoryID = "packageManager"
)

// None is the reserved sentinel value present in every domain
const None = "none"

// Cardinality says whether a category holds one value or a set
type Cardinality int

const (
	Single Cardinality = iota
	Set
)

// String returns "single" or "set"
func (c Cardinality) String() string {
	if c == Set {
		return "set"
	}
	return "single"
}

// Group is the logical check group a category belongs to. The CLI reports
// the first violation of a group before moving on to the next one.
type Group string

const (
	GroupFrontend   Group = "frontend"
	GroupBackend    Group = "backend"
	GroupDatabase   Group = "database"
	GroupAPI        Group = "api"
	GroupAuth       Group = "auth"
	GroupAddons     Group = "addons"
	GroupDeployment Group = "deployment"
	GroupTooling    Group = "tooling"
)

// Category describes one configuration dimension
type Category struct {
	ID          CategoryID
	Label       string
	Domain      []string    // allowed values in display order, always includes None
	Cardinality Cardinality // single value or set
	Order       int         // evaluation order, lower is upstream
	AllowEmpty  bool        // set categories only: an empty set is legal
	Group       Group
	Default     []string
}

// IsSet reports whether the category holds a set of values
func (c Category) IsSet() bool {
	return c.Cardinality == Set
}

// InDomain reports whether value is one of the category's allowed values
func (c Category) InDomain(value string) bool {
	for _, v := range c.Domain {
		if v == value {
			return true
		}
	}
	return false
}

// Frontend framework values
const (
	TanstackRouter   = "tanstack-router"
	ReactRouter      = "react-router"
	TanstackStart    = "tanstack-start"
	Next             = "next"
	Nuxt             = "nuxt"
	Svelte           = "svelte"
	Solid            = "solid"
	NativeNativewind = "native-nativewind"
	NativeUnistyles  = "native-unistyles"
)

var webFrameworks = []string{TanstackRouter, ReactRouter, TanstackStart, Next, Nuxt, Svelte, Solid}

var nativeFrameworks = []string{NativeNativewind, NativeUnistyles}

var reactWebFrameworks = []string{TanstackRouter, ReactRouter, TanstackStart, Next}

// categories is the catalog in evaluation order. It is never mutated; callers
// get copies through Categories and Lookup.
var categories = []Category{
	{
		ID:          Frontend,
		Label:       "Frontend",
		Domain:      append(append(append([]string{}, webFrameworks...), nativeFrameworks...), None),
		Cardinality: Set,
		Group:       GroupFrontend,
		Default:     []string{TanstackRouter},
	},
	{
		ID:      Backend,
		Label:   "Backend",
		Domain:  []string{"hono", "express", "fastify", "elysia", "next", "convex", None},
		Group:   GroupBackend,
		Default: []string{"hono"},
	},
	{
		ID:      Runtime,
		Label:   "Runtime",
		Domain:  []string{"bun", "node", "workers", None},
		Group:   GroupBackend,
		Default: []string{"bun"},
	},
	{
		ID:      Database,
		Label:   "Database",
		Domain:  []string{"sqlite", "postgres", "mysql", "mongodb", None},
		Group:   GroupDatabase,
		Default: []string{"sqlite"},
	},
	{
		ID:      ORM,
		Label:   "ORM",
		Domain:  []string{"drizzle", "prisma", "mongoose", None},
		Group:   GroupDatabase,
		Default: []string{"drizzle"},
	},
	{
		ID:      DBSetup,
		Label:   "Database setup",
		Domain:  []string{"turso", "d1", "neon", "supabase", "prisma-postgres", "mongodb-atlas", "docker", None},
		Group:   GroupDatabase,
		Default: []string{None},
	},
	{
		ID:      API,
		Label:   "API",
		Domain:  []string{"trpc", "orpc", None},
		Group:   GroupAPI,
		Default: []string{"trpc"},
	},
	{
		ID:      Auth,
		Label:   "Auth",
		Domain:  []string{"better-auth", "clerk", None},
		Group:   GroupAuth,
		Default: []string{"better-auth"},
	},
	{
		ID:      Payments,
		Label:   "Payments",
		Domain:  []string{"polar", None},
		Group:   GroupAuth,
		Default: []string{None},
	},
	{
		ID:          Addons,
		Label:       "Addons",
		Domain:      []string{"pwa", "tauri", "starlight", "biome", "husky", "turborepo", None},
		Cardinality: Set,
		AllowEmpty:  true,
		Group:       GroupAddons,
		Default:     []string{"turborepo"},
	},
	{
		ID:          Examples,
		Label:       "Examples",
		Domain:      []string{"todo", "ai", None},
		Cardinality: Set,
		AllowEmpty:  true,
		Group:       GroupAddons,
		Default:     []string{},
	},
	{
		ID:      WebDeploy,
		Label:   "Web deploy",
		Domain:  []string{"workers", "alchemy", None},
		Group:   GroupDeployment,
		Default: []string{None},
	},
	{
		ID:      ServerDeploy,
		Label:   "Server deploy",
		Domain:  []string{"workers", "alchemy", None},
		Group:   GroupDeployment,
		Default: []string{None},
	},
	{
		ID:      PackageManager,
		Label:   "Package manager",
		Domain:  []string{"npm", "pnpm", "bun", None},
		Group:   GroupTooling,
		Default: []string{"bun"},
	},
}

func init() {
	for i := range categories {
		categories[i].Order = i
	}
}

// Categories returns a copy of the catalog in evaluation order
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.clone()
	}
	return out
}

// IDs returns every category ID in evaluation order
func IDs() []CategoryID {
	ids := make([]CategoryID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

// Count returns the number of categories
func Count() int {
	return len(categories)
}

// Lookup returns the category with the given ID
func Lookup(id CategoryID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c.clone(), true
		}
	}
	return Category{}, false
}

// MustLookup is Lookup for IDs known at compile time; it panics on unknown IDs
func MustLookup(id CategoryID) Category {
	c, ok := Lookup(id)
	if !ok {
		panic("stack: unknown category " + string(id))
	}
	return c
}

// Order returns the evaluation order of a category, or -1 if unknown
func Order(id CategoryID) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ParseCategoryID resolves a user-supplied category name. Matching is
// case-insensitive and accepts kebab-case ("db-setup") as well.
func ParseCategoryID(name string) (CategoryID, bool) {
	want := normalizeName(name)
	for _, c := range categories {
		if normalizeName(string(c.ID)) == want {
			return c.ID, true
		}
	}
	return "", false
}

func normalizeName(name string) string {
	b := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch == '-' || ch == '_':
			continue
		case ch >= 'A' && ch <= 'Z':
			b = append(b, ch+('a'-'A'))
		default:
			b = append(b, ch)
		}
	}
	return string(b)
}

func (c Category) clone() Category {
	c.Domain = append([]string(nil), c.Domain...)
	c.Default = append([]string{}, c.Default...)
	return c
}

// IsWebFramework reports whether v is a web frontend framework
func IsWebFramework(v string) bool {
	return contains(webFrameworks, v)
}

// IsNativeFramework reports whether v is a native (React Native) frontend
func IsNativeFramework(v string) bool {
	return contains(nativeFrameworks, v)
}

// IsReactWebFramework reports whether v is a React-based web frontend
func IsReactWebFramework(v string) bool {
	return contains(reactWebFrameworks, v)
}

// WebFrameworks returns the web frontend values in domain order
func WebFrameworks() []string {
	return append([]string(nil), webFrameworks...)
}

// NativeFrameworks returns the native frontend values in domain order
func NativeFrameworks() []string {
	return append([]string(nil), nativeFrameworks...)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
