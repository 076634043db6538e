// Turn summary - pure reduction of one turn's tool calls into counts and
// a display phrase. Summarizes intent and volume, not success.

package agent

import (
	"fmt"
	"strings"

	"github.com/richinex/theseus/llm"
)

// TurnSummary holds per-category counts for one turn's tool calls and a
// rendered display phrase.
type TurnSummary struct {
	CommandsRun   int    `json:"commands_run"`
	FilesViewed   int    `json:"files_viewed"`
	FilesCreated  int    `json:"files_created"`
	FilesEdited   int    `json:"files_edited"`
	PathsSearched int    `json:"paths_searched"`
	WebSearches   int    `json:"web_searches"`
	PagesFetched  int    `json:"pages_fetched"`
	ToolCount     int    `json:"tool_count"`
	Display       string `json:"display"`
}

// BuildTurnSummary counts the turn's tool calls per category and renders
// the display sentence. Clause order is fixed: commands, files viewed,
// files created, files edited, paths searched, web search, pages fetched.
// Zero-count clauses are omitted; a turn with no tool calls reads "Done".
func BuildTurnSummary(calls []llm.ToolUseContent) TurnSummary {
	s := TurnSummary{ToolCount: len(calls)}

	for _, call := range calls {
		switch call.Name {
		case "execute_shell", "bash":
			s.CommandsRun++
		case "read_file", "batch_read":
			s.FilesViewed++
		case "write_file":
			s.FilesCreated++
		case "edit_file", "multi_edit":
			s.FilesEdited++
		case "list_dir", "search_text", "grep_search", "file_search":
			s.PathsSearched++
		case "web_search":
			s.WebSearches++
		case "web_fetch":
			s.PagesFetched++
		}
	}

	var parts []string
	if s.CommandsRun > 0 {
		parts = append(parts, "Ran "+countPhrase(s.CommandsRun, "command"))
	}
	if s.FilesViewed > 0 {
		parts = append(parts, "viewed "+countPhrase(s.FilesViewed, "file"))
	}
	if s.FilesCreated > 0 {
		parts = append(parts, "created "+countPhrase(s.FilesCreated, "file"))
	}
	if s.FilesEdited > 0 {
		parts = append(parts, "edited "+countPhrase(s.FilesEdited, "file"))
	}
	if s.PathsSearched > 0 {
		parts = append(parts, "searched "+countPhrase(s.PathsSearched, "path"))
	}
	if s.WebSearches > 0 {
		parts = append(parts, "searched the web")
	}
	if s.PagesFetched > 0 {
		parts = append(parts, "fetched "+countPhrase(s.PagesFetched, "page"))
	}

	display := "Done"
	if len(parts) > 0 {
		display = strings.Join(parts, ", ")
		display = strings.ToUpper(display[:1]) + display[1:]
	}
	s.Display = display
	return s
}

// countPhrase renders "a command" for one, "3 commands" for more.
func countPhrase(n int, noun string) string {
	if n == 1 {
		return "a " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
