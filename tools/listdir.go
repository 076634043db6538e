// Directory Listing Tool.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultListDepth = 2
	maxListDepth     = 5
)

// ListDirTool enumerates directory entries with sizes, skipping hidden
// entries and noise directories (build caches, VCS metadata, dependencies).
type ListDirTool struct {
	BaseTool
	workspace string
}

// NewListDirTool creates a new directory listing tool.
func NewListDirTool(workspace string) *ListDirTool {
	return &ListDirTool{workspace: workspace}
}

// Metadata returns the tool metadata.
func (t *ListDirTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_dir",
		Description: "List files and directories with sizes.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path (default: workspace root)", Required: false},
			{Name: "depth", ParamType: "integer", Description: "Max depth (default: 2, max: 5)", Required: false},
		},
	}
}

type listDirArgs struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// Execute lists the directory tree up to the requested depth.
func (t *ListDirTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a listDirArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}

	target := "."
	if a.Path != "" {
		target = a.Path
	}
	path := resolvePath(t.workspace, target)

	depth := a.Depth
	if depth <= 0 {
		depth = defaultListDepth
	}
	if depth > maxListDepth {
		depth = maxListDepth
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return FailureResultf("not a directory: %s", path), nil
	}

	var lines []string
	walkDir(path, &lines, 0, depth)

	if len(lines) == 0 {
		return SuccessResult(fmt.Sprintf("%s\n  (empty directory)", path)), nil
	}
	return SuccessResult(path + "\n" + strings.Join(lines, "\n")), nil
}

// walkDir appends indented entries for one level and recurses into
// subdirectories until the depth limit.
func walkDir(path string, lines *[]string, depth, maxDepth int) {
	if depth >= maxDepth {
		return
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	indent := strings.Repeat("  ", depth+1)
	for _, name := range names {
		if skipDirs[name] || strings.HasPrefix(name, ".") {
			continue
		}
		entry := byName[name]
		full := filepath.Join(path, name)
		if entry.IsDir() {
			*lines = append(*lines, fmt.Sprintf("%s%s/ (%d items)", indent, name, visibleCount(full)))
			walkDir(full, lines, depth+1, maxDepth)
		} else {
			size := int64(0)
			if info, err := entry.Info(); err == nil {
				size = info.Size()
			}
			*lines = append(*lines, fmt.Sprintf("%s%s (%s)", indent, name, humanSize(size)))
		}
	}
}

// visibleCount counts non-hidden entries in a directory.
func visibleCount(path string) int {
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			count++
		}
	}
	return count
}
