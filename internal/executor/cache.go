package executor

import (
	"strings"
)

// DefaultReadOnlyPrefixes lists the command prefixes whose results may be
// memoized. Anything else always runs.
var DefaultReadOnlyPrefixes = []string{
	"kubectl get",
	"kubectl describe",
	"kubectl api-resources",
	"kubectl api-versions",
	"kubectl explain",
	"kubectl version",
	"helm list",
	"helm get",
	"helm search",
	"helm show",
	"helm status",
	"helm history",
	"helm repo list",
}

type cacheKey struct {
	command   string
	namespace string
}

func (k cacheKey) String() string {
	return k.namespace + "\x00" + k.command
}

func compilePrefixes(prefixes []string) [][]string {
	out := make([][]string, 0, len(prefixes))
	for _, p := range prefixes {
		if fields := strings.Fields(p); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}

// matchesPrefix reports whether the leading words of command equal one of the
// prefixes word for word.
func matchesPrefix(prefixes [][]string, command string) bool {
	words := strings.Fields(command)
	for _, prefix := range prefixes {
		if len(words) < len(prefix) {
			continue
		}
		matched := true
		for i, w := range prefix {
			if words[i] != w {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
