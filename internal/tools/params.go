package tools

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
)

// NamespaceParam is the optional namespace argument shared by namespaced tools.
func NamespaceParam() mcp.ToolOption {
	return mcp.WithString("namespace",
		mcp.Description("Kubernetes namespace (defaults to the server's default namespace)"),
	)
}

// LimitParam is the optional item limit shared by list tools.
func LimitParam() mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description("Maximum number of items to return (the server caps this value)"),
	)
}

// Namespace returns the namespace argument, or the configured default
// namespace when it is absent.
func Namespace(args map[string]any, sc *server.ServerContext) string {
	if namespace, ok := args["namespace"].(string); ok && namespace != "" {
		return namespace
	}
	return sc.Config().DefaultNamespace
}

// RequiredString returns a non-empty string argument. When the argument is
// missing the second return value is the error result to send back.
func RequiredString(args map[string]any, key string) (string, *mcp.CallToolResult) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", mcp.NewToolResultError(key + " is required")
	}
	return value, nil
}

// Int reads a numeric argument. JSON numbers arrive as float64; numeric
// strings are accepted as well. The bool reports whether the argument was
// present.
func Int(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
}

// StringMap reads an object argument whose values are rendered as strings,
// e.g. labels or environment variables. Numbers and booleans are formatted.
func StringMap(args map[string]any, key string) (map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}

	result := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			result[k] = val
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			result[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("%s.%s must be a string", key, k)
		}
	}
	return result, nil
}
