package executor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// ReleaseExecutor runs helm release commands with the same contract as
// Executor and adds builders for the common release operations.
type ReleaseExecutor struct {
	*Executor
}

// NewReleaseExecutor wraps exec.
func NewReleaseExecutor(exec *Executor) *ReleaseExecutor {
	return &ReleaseExecutor{Executor: exec}
}

// InstallRequest describes a helm install or upgrade.
type InstallRequest struct {
	Name      string
	Chart     string
	Namespace string
	Version   string
	Values    map[string]any
}

// List runs "helm list".
func (r *ReleaseExecutor) List(ctx context.Context, namespace string) Result {
	return r.Execute(ctx, "helm list", InNamespace(namespace))
}

// Install runs "helm install <name> <chart>".
func (r *ReleaseExecutor) Install(ctx context.Context, req InstallRequest) Result {
	return r.runWithValues(ctx, "install", req)
}

// Upgrade runs "helm upgrade <name> <chart>".
func (r *ReleaseExecutor) Upgrade(ctx context.Context, req InstallRequest) Result {
	return r.runWithValues(ctx, "upgrade", req)
}

// Uninstall runs "helm uninstall <name>", keeping history when asked.
func (r *ReleaseExecutor) Uninstall(ctx context.Context, name, namespace string, keepHistory bool) Result {
	cmd := "helm uninstall " + QuoteArg(name)
	if keepHistory {
		cmd += " --keep-history"
	}
	return r.Execute(ctx, cmd, InNamespace(namespace))
}

// GetValues runs "helm get values <name>", including computed values when all is set.
func (r *ReleaseExecutor) GetValues(ctx context.Context, name, namespace string, all bool) Result {
	cmd := "helm get values " + QuoteArg(name)
	if all {
		cmd += " --all"
	}
	return r.Execute(ctx, cmd, InNamespace(namespace))
}

// Rollback runs "helm rollback <name> [revision]". A revision of zero or less
// rolls back to the previous release.
func (r *ReleaseExecutor) Rollback(ctx context.Context, name, namespace string, revision int) Result {
	cmd := "helm rollback " + QuoteArg(name)
	if revision > 0 {
		cmd += " " + strconv.Itoa(revision)
	}
	return r.Execute(ctx, cmd, InNamespace(namespace))
}

// Search runs "helm search repo <keyword>".
func (r *ReleaseExecutor) Search(ctx context.Context, keyword string, regex bool) Result {
	cmd := "helm search repo"
	if regex {
		cmd += " --regex"
	}
	if keyword != "" {
		cmd += " " + QuoteArg(keyword)
	}
	return r.Execute(ctx, cmd)
}

// RepoAdd runs "helm repo add <name> <url>".
func (r *ReleaseExecutor) RepoAdd(ctx context.Context, name, url string) Result {
	return r.Execute(ctx, "helm repo add "+QuoteArg(name)+" "+QuoteArg(url))
}

// RepoUpdate runs "helm repo update".
func (r *ReleaseExecutor) RepoUpdate(ctx context.Context) Result {
	return r.Execute(ctx, "helm repo update")
}

// RepoList runs "helm repo list".
func (r *ReleaseExecutor) RepoList(ctx context.Context) Result {
	return r.Execute(ctx, "helm repo list")
}

// RepoRemove runs "helm repo remove <name>".
func (r *ReleaseExecutor) RepoRemove(ctx context.Context, name string) Result {
	return r.Execute(ctx, "helm repo remove "+QuoteArg(name))
}

func (r *ReleaseExecutor) runWithValues(ctx context.Context, verb string, req InstallRequest) Result {
	cmd := fmt.Sprintf("helm %s %s %s", verb, QuoteArg(req.Name), QuoteArg(req.Chart))
	if req.Version != "" {
		cmd += " --version " + QuoteArg(req.Version)
	}

	if len(req.Values) > 0 {
		path, err := writeValuesFile(req.Values)
		if err != nil {
			return Failed(cmd, fmt.Sprintf("failed to write values file: %v", err))
		}
		defer os.Remove(path)
		cmd += " --values " + QuoteArg(path)
	}

	return r.Execute(ctx, cmd, InNamespace(req.Namespace))
}

func writeValuesFile(values map[string]any) (string, error) {
	data, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal values: %w", err)
	}

	f, err := os.CreateTemp("", "kubectl-mcp-values-*.yaml")
	if err != nil {
		return "", fmt.Errorf("failed to create values file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write values file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close values file: %w", err)
	}
	return f.Name(), nil
}

// QuoteArg single-quotes s when it would otherwise be split or interpreted by
// shell-word parsing.
func QuoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
