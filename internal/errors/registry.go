package errors

import (
	stderrors "errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

// Template defines a registered error code.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Example    string
}

var registry = map[string]Template{
	// Binding errors (SB001-SB019)

	"SB001": {
		Category:   CategoryBinding,
		Message:    "Invalid state container",
		Detail:     "A binding refers to a container that is nil or has been disposed.",
		Suggestion: "Create the container before calling Connect and keep it alive while components are mounted.",
		Example:    "count := statebind.NewState(0)\ndef, err := statebind.Connect(statebind.Entries{{Name: \"count\", Value: count}})",
	},
	"SB002": {
		Category:   CategoryBinding,
		Message:    "Unsupported binding",
		Detail:     "The value of an entry could not be classified as a container, wrapper, method or literal.",
		Suggestion: "Wrap containers with State, Model or Loadable, or pass a plain func for an action.",
	},
	"SB003": {
		Category:   CategoryBinding,
		Message:    "Duplicate binding name",
		Detail:     "Each entry passed to Connect must have a unique name.",
		Suggestion: "Rename one of the entries or drop the duplicate.",
	},
	"SB004": {
		Category:   CategoryBinding,
		Message:    "Empty binding name",
		Detail:     "Every entry needs a name. It becomes the prop or method name on the component.",
	},
	"SB005": {
		Category:   CategoryBinding,
		Message:    "No active execution scope",
		Detail:     "A scoped operation ran without an execution scope in its context.",
		Suggestion: "Pass the context received by the action down to container writes.",
	},

	// Runtime errors (SB020-SB039)

	"SB020": {
		Category:   CategoryRuntime,
		Message:    "Unknown method",
		Detail:     "The component has no method with that name.",
		Suggestion: "Run with --help to list the methods of the component.",
	},
	"SB021": {
		Category: CategoryRuntime,
		Message:  "Component destroyed",
		Detail:   "The component was destroyed before the call reached it.",
	},
	"SB022": {
		Category: CategoryRuntime,
		Message:  "Event loop closed",
		Detail:   "The event loop stopped before the work could run.",
	},

	// Config errors (SB040-SB059)

	"SB040": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "One or more configuration values failed validation.",
		Suggestion: "Fix the listed fields in the config file or the STATEBIND_* environment variables.",
		Example:    "server:\n  addr: \":8080\"\nlog:\n  level: info",
	},

	// Transport errors (SB060-SB079)

	"SB060": {
		Category:   CategoryTransport,
		Message:    "Server failed",
		Detail:     "The HTTP server stopped with an error.",
		Suggestion: "Check that the listen address is free.",
	},

	// Fallback

	"SB099": {
		Category: CategoryCLI,
		Message:  "Unexpected error",
	},
}

type matcher struct {
	code  string
	match func(error) bool
}

func is(target error) func(error) bool {
	return func(err error) bool { return stderrors.Is(err, target) }
}

var matchers = []matcher{
	{"SB001", is(bind.ErrInvalidState)},
	{"SB002", is(bind.ErrUnsupportedBinding)},
	{"SB003", is(bind.ErrDuplicateBinding)},
	{"SB004", is(bind.ErrEmptyName)},
	{"SB005", is(bind.ErrScopeMisuse)},
	{"SB020", is(host.ErrUnknownMethod)},
	{"SB021", is(host.ErrDestroyed)},
	{"SB022", is(loop.ErrClosed)},
	{"SB040", func(err error) bool {
		var verrs validator.ValidationErrors
		return stderrors.As(err, &verrs)
	}},
}

// Codes returns every registered code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a code.
func Register(code string, t Template) {
	registry[code] = t
}
