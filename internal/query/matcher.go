package query

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"strings"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/k8s"
	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

// ErrNoMatch is reported by Validate when no template matches.
var ErrNoMatch = errors.New("query does not match any supported command")

// Commander runs a textual command. *executor.Executor and
// *executor.ReleaseExecutor satisfy it.
type Commander interface {
	Execute(ctx context.Context, command string, opts ...executor.CallOption) executor.Result
}

var (
	embeddedNamespaceRegex = regexp.MustCompile(`(?i)\bin\s+(?:the\s+)?namespace\s+([a-z0-9](?:[-a-z0-9]*[a-z0-9])?)\b`)
	allNamespacesRegex     = regexp.MustCompile(`\s(-A|--all-namespaces)\b`)
)

// Match is a resolved query.
type Match struct {
	// Command is the rendered command line, without namespace flags.
	Command string `json:"command"`
	// Namespace is the namespace the command should run in, if any.
	Namespace string `json:"namespace,omitempty"`
	// Matched is false when the default command was used.
	Matched bool `json:"matched"`
	// Template is the matching template's index in the table, or -1.
	Template int `json:"template"`
}

// Validation is the outcome of a validate-only resolution.
type Validation struct {
	Valid   bool   `json:"valid"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Matcher maps free-text queries to commands and runs them.
type Matcher struct {
	templates []compiledTemplate
	kubectl   Commander
	helm      Commander
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*matcherOptions)

type matcherOptions struct {
	templates []Template
	logger    *slog.Logger
}

// WithTemplates replaces the built-in template table.
func WithTemplates(templates []Template) Option {
	return func(o *matcherOptions) {
		o.templates = templates
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *matcherOptions) {
		o.logger = logger
	}
}

// NewMatcher compiles the template table once and returns a Matcher routing
// helm commands to helm and everything else to kubectl.
func NewMatcher(kubectl, helm Commander, opts ...Option) (*Matcher, error) {
	o := matcherOptions{templates: DefaultTemplates, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	compiled, err := compileTemplates(o.templates)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		templates: compiled,
		kubectl:   kubectl,
		helm:      helm,
		logger:    o.logger,
	}, nil
}

// Match returns the first template match for query. Templates whose command
// cannot be rendered from the captured groups are skipped.
func (m *Matcher) Match(query string) (Match, bool) {
	q := normalize(query)
	for i, t := range m.templates {
		sub := t.re.FindStringSubmatch(q)
		if sub == nil {
			continue
		}
		cmd, err := t.render(sub[1:])
		if err != nil {
			m.logger.Debug("skipping template", slog.Int("template", i), logging.Err(err))
			continue
		}
		return Match{Command: cmd, Matched: true, Template: i}, true
	}
	return Match{}, false
}

// Resolve maps query to a command and a namespace. An explicit namespace wins
// over one embedded in the text ("... in namespace kube-system"). When a
// namespace is in play, all-namespaces flags are dropped from the command.
// Commands on cluster-scoped kinds never carry a namespace.
func (m *Matcher) Resolve(query, namespace string) Match {
	match, ok := m.Match(query)
	if !ok {
		match = Match{Command: DefaultCommand, Template: -1}
	}

	if targetsClusterScoped(match.Command) {
		return match
	}
	if namespace == "" {
		namespace = EmbeddedNamespace(query)
	}
	if namespace != "" {
		match.Namespace = namespace
		match.Command = allNamespacesRegex.ReplaceAllString(match.Command, "")
	}
	return match
}

// Process resolves query and runs the command through the helm or kubectl
// commander. Panics during resolution are reported as a failed result.
func (m *Matcher) Process(ctx context.Context, query, namespace string) (res executor.Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("query processing panicked", slog.Any("panic", r))
			res = executor.Failed("", fmt.Sprintf("failed to process query: %v", r))
		}
	}()

	match := m.Resolve(query, namespace)
	m.logger.Debug("resolved query",
		logging.Command(match.Command),
		logging.Namespace(match.Namespace),
		slog.Bool("matched", match.Matched))

	return m.commanderFor(match.Command).Execute(ctx, match.Command, executor.InNamespace(match.Namespace))
}

// Validate resolves query without running anything. Unlike Resolve, a query
// matching no template is reported as invalid.
func (m *Matcher) Validate(query string) Validation {
	if strings.TrimSpace(query) == "" {
		return Validation{Error: "query must not be empty"}
	}
	match, ok := m.Match(query)
	if !ok {
		return Validation{Error: ErrNoMatch.Error()}
	}
	return Validation{Valid: true, Command: match.Command}
}

// ListSupportedCommands yields a human-readable description of every
// template, in priority order. The sequence is rebuilt on every iteration.
func (m *Matcher) ListSupportedCommands() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, t := range m.templates {
			if !yield(t.usage()) {
				return
			}
		}
		yield("<anything else> -> " + DefaultCommand)
	}
}

// IsReleaseCommand reports whether command belongs to the helm vocabulary.
func IsReleaseCommand(command string) bool {
	fields := strings.Fields(command)
	return len(fields) > 0 && fields[0] == "helm"
}

// targetsClusterScoped reports whether a kubectl command acts on a
// cluster-scoped kind, as in "kubectl get nodes -o wide".
func targetsClusterScoped(command string) bool {
	fields := strings.Fields(command)
	if len(fields) < 3 || fields[0] != "kubectl" {
		return false
	}
	kind, _, _ := strings.Cut(fields[2], "/")
	return k8s.IsClusterScoped(kind)
}

// EmbeddedNamespace extracts X from an "in namespace X" phrase.
func EmbeddedNamespace(query string) string {
	sub := embeddedNamespaceRegex.FindStringSubmatch(query)
	if sub == nil {
		return ""
	}
	return strings.ToLower(sub[1])
}

func (m *Matcher) commanderFor(command string) Commander {
	if IsReleaseCommand(command) && m.helm != nil {
		return m.helm
	}
	return m.kubectl
}

func normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
