package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/napatw/storeops/agent/contract"
)

// Executor runs one named tool against the shared facades and returns a
// plain-text result for the model transcript.
type Executor func(ctx context.Context, name string, args map[string]any) (string, error)

// Deps carries the facades tools read from. Now is injectable for the
// date-window defaults.
type Deps struct {
	Data   contractx.DataStore
	Search contractx.SearchStore
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// ForAgent returns the tool schemas and the executor for one specialist.
func ForAgent(name contractx.AgentName, deps Deps) ([]*schema.ToolInfo, Executor) {
	switch name {
	case contractx.AgentSales:
		return salesToolInfos(), salesExecutor(deps)
	case contractx.AgentInventory:
		return inventoryToolInfos(), inventoryExecutor(deps)
	case contractx.AgentSupport:
		return supportToolInfos(), supportExecutor(deps)
	case contractx.AgentMarketing:
		return marketingToolInfos(), marketingExecutor(deps)
	case contractx.AgentMemory:
		return memoryToolInfos(), memoryExecutor(deps)
	default:
		return nil, nil
	}
}

// Catalogue renders a human-readable tool listing for a system prompt.
func Catalogue(infos []*schema.ToolInfo) string {
	if len(infos) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, info := range infos {
		if info == nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", info.Name, info.Desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

/* ------------------------------ arg helpers ------------------------------ */

func strArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// intArg tolerates the float64 that JSON decoding produces.
func intArg(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func intArgDefault(args map[string]any, key string, def int64) int64 {
	if v, ok := intArg(args, key); ok && v > 0 {
		return v
	}
	return def
}

func floatArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intSliceArg(args map[string]any, key string) ([]int64, bool) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, false
		}
		out = append(out, int64(f))
	}
	return out, true
}

// dateArg parses an ISO date argument, defaulting to daysAgo before now when
// absent or malformed.
func dateArg(args map[string]any, key string, daysAgo int, now time.Time) string {
	if raw, ok := strArg(args, key); ok && raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
}
