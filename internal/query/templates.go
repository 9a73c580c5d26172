package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCommand is used when no template matches.
const DefaultCommand = "kubectl get all -A -o wide"

// Name-like capture groups.
const (
	namePattern  = `[a-z0-9](?:[-a-z0-9.]*[a-z0-9])?`
	chartPattern = `[\w.-]+(?:/[\w.-]+)?`
	listPrefix   = `(?:show|list|get|display)(?:\s+me)?(?:\s+all)?(?:\s+the)?\s+`
)

// Clause is an optional flag appended to a rendered command when its capture
// group participated in the match. Format receives the captured text.
type Clause struct {
	Group  int
	Format string
}

// Template maps a query pattern to a command. Command refers to capture
// groups positionally as {0}, {1}, ...; Pattern is matched case-insensitively
// against the start of the query.
type Template struct {
	Pattern string
	Command string
	Clauses []Clause
	Example string
}

// DefaultTemplates is the built-in table. Order is match priority.
var DefaultTemplates = []Template{
	{
		Pattern: `describe\s+(?:the\s+)?pod\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl describe pod {0}",
		Example: "describe pod <name>",
	},
	{
		Pattern: `describe\s+(?:the\s+)?deployment\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl describe deployment {0}",
		Example: "describe deployment <name>",
	},
	{
		Pattern: `describe\s+(?:the\s+)?namespace\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl describe namespace {0}",
		Example: "describe namespace <name>",
	},
	{
		Pattern: `(?:show|get|fetch|display)\s+(?:me\s+)?(?:the\s+)?logs?\s+(?:of|for|from)\s+(?:pod\s+)?(?P<name>` + namePattern + `)(?:.*?\btail\s+(?P<number>\d+))?`,
		Command: "kubectl logs {0}",
		Clauses: []Clause{{Group: 1, Format: " --tail=%s"}},
		Example: "show logs for pod <name> [tail <number>]",
	},
	{
		Pattern: `scale\s+(?:the\s+)?deployment\s+(?P<name>` + namePattern + `)\s+to\s+(?P<number>\d+)`,
		Command: "kubectl scale deployment {0} --replicas={1}",
		Example: "scale deployment <name> to <number> replicas",
	},
	{
		Pattern: `restart\s+(?:the\s+)?deployment\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl rollout restart deployment {0}",
		Example: "restart deployment <name>",
	},
	{
		Pattern: `(?:delete|remove)\s+(?:the\s+)?pod\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl delete pod {0}",
		Example: "delete pod <name>",
	},
	{
		Pattern: `(?:delete|remove)\s+(?:the\s+)?deployment\s+(?P<name>` + namePattern + `)`,
		Command: "kubectl delete deployment {0}",
		Example: "delete deployment <name>",
	},
	{
		Pattern: listPrefix + `(?:running\s+)?pods?\b(?:.*?\bwith\s+labels?\s+(?P<selector>\S+))?`,
		Command: "kubectl get pods -A -o wide",
		Clauses: []Clause{{Group: 0, Format: " -l %s"}},
		Example: "show all pods [with label <selector>]",
	},
	{
		Pattern: listPrefix + `deployments?\b(?:.*?\bwith\s+labels?\s+(?P<selector>\S+))?`,
		Command: "kubectl get deployments -A -o wide",
		Clauses: []Clause{{Group: 0, Format: " -l %s"}},
		Example: "show all deployments [with label <selector>]",
	},
	{
		Pattern: listPrefix + `services?\b`,
		Command: "kubectl get services -A -o wide",
		Example: "show all services",
	},
	{
		Pattern: listPrefix + `namespaces?\b`,
		Command: "kubectl get namespaces",
		Example: "show all namespaces",
	},
	{
		Pattern: listPrefix + `nodes?\b`,
		Command: "kubectl get nodes -o wide",
		Example: "show all nodes",
	},
	{
		Pattern: listPrefix + `(?:recent\s+)?events?\b`,
		Command: "kubectl get events -A --sort-by=.lastTimestamp",
		Example: "show all events",
	},
	{
		Pattern: listPrefix + `(?:helm\s+)?releases?\b`,
		Command: "helm list -A",
		Example: "show all releases",
	},
	{
		Pattern: `install\s+(?:chart\s+)?(?P<chart>` + chartPattern + `)\s+as\s+(?P<name>` + namePattern + `)(?:\s+version\s+(?P<version>\S+))?`,
		Command: "helm install {1} {0}",
		Clauses: []Clause{{Group: 2, Format: " --version %s"}},
		Example: "install chart <chart> as <name> [version <version>]",
	},
	{
		Pattern: `uninstall\s+(?:release\s+)?(?P<name>` + namePattern + `)`,
		Command: "helm uninstall {0}",
		Example: "uninstall release <name>",
	},
	{
		Pattern: `roll\s*back\s+(?:release\s+)?(?P<name>` + namePattern + `)(?:\s+to\s+(?:revision\s+)?(?P<number>\d+))?`,
		Command: "helm rollback {0}",
		Clauses: []Clause{{Group: 1, Format: " %s"}},
		Example: "rollback release <name> [to revision <number>]",
	},
	{
		Pattern: `search\s+(?:for\s+)?(?:charts?\s+)?(?:for\s+)?(?P<keyword>[\w./-]+)`,
		Command: "helm search repo {0}",
		Example: "search charts <keyword>",
	},
	{
		Pattern: `(?:show\s+|get\s+)?cluster\s+info\b`,
		Command: "kubectl cluster-info",
		Example: "show cluster info",
	},
}

type compiledTemplate struct {
	Template
	re *regexp.Regexp
}

func compileTemplates(templates []Template) ([]compiledTemplate, error) {
	out := make([]compiledTemplate, 0, len(templates))
	for i, t := range templates {
		re, err := regexp.Compile(`(?i)^` + t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("template %d: invalid pattern: %w", i, err)
		}
		out = append(out, compiledTemplate{Template: t, re: re})
	}
	return out, nil
}

var placeholderRegex = regexp.MustCompile(`\{(\d+)\}`)

// render substitutes groups into the template command and appends every
// clause whose group is present. It fails when a placeholder refers to a
// group that does not exist or did not participate in the match.
func (t compiledTemplate) render(groups []string) (string, error) {
	var formatErr error
	cmd := placeholderRegex.ReplaceAllStringFunc(t.Command, func(ph string) string {
		idx, _ := strconv.Atoi(ph[1 : len(ph)-1])
		if idx >= len(groups) || groups[idx] == "" {
			formatErr = fmt.Errorf("placeholder %s has no matching group", ph)
			return ph
		}
		return groups[idx]
	})
	if formatErr != nil {
		return "", formatErr
	}

	for _, c := range t.Clauses {
		if c.Group < 0 || c.Group >= len(groups) {
			return "", fmt.Errorf("clause refers to missing group %d", c.Group)
		}
		if groups[c.Group] != "" {
			cmd += fmt.Sprintf(c.Format, groups[c.Group])
		}
	}
	return cmd, nil
}

// usage renders the template for humans, with placeholders shown by their
// group names.
func (t compiledTemplate) usage() string {
	names := t.re.SubexpNames()
	cmd := placeholderRegex.ReplaceAllStringFunc(t.Command, func(ph string) string {
		idx, _ := strconv.Atoi(ph[1 : len(ph)-1])
		if idx+1 < len(names) && names[idx+1] != "" {
			return "<" + names[idx+1] + ">"
		}
		return "<arg>"
	})
	for _, c := range t.Clauses {
		if c.Group+1 < len(names) {
			cmd += " [" + strings.TrimSpace(fmt.Sprintf(c.Format, "<"+names[c.Group+1]+">")) + "]"
		}
	}
	if t.Example == "" {
		return cmd
	}
	return t.Example + " -> " + cmd
}
