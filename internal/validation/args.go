package validation

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Typed argument accessors over the raw invocation argument map. Each
// returns the zero value and false when the argument is absent or has the
// wrong type; there is no coercion from strings.

// StringArg reads a string argument.
func StringArg(req mcp.CallToolRequest, name string) (string, bool) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg reads an integer argument. JSON numbers arrive as float64 and are
// accepted only when they carry no fractional part.
func IntArg(req mcp.CallToolRequest, name string) (int, bool) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// FloatArg reads a numeric argument.
func FloatArg(req mcp.CallToolRequest, name string) (float64, bool) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// BoolArg reads a boolean argument.
func BoolArg(req mcp.CallToolRequest, name string) (bool, bool) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// StringSliceArg reads an array-of-strings argument. A mixed-type array
// fails as a whole.
func StringSliceArg(req mcp.CallToolRequest, name string) ([]string, bool) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []any:
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
