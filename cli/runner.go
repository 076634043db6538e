// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and loop setup hidden
// - Event rendering hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/theseus/agent"
	"github.com/richinex/theseus/config"
	"github.com/richinex/theseus/llm"
	"github.com/richinex/theseus/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	MaxTurns  int
	Workspace string
	Verbose   bool
	JSON      bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxTurns: agent.DefaultMaxTurns,
		Verbose:  false,
	}
}

// stderrLogger forwards loop diagnostics to the standard logger.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// RunTask executes a single task and renders the event stream.
func RunTask(ctx context.Context, task string, opts Options) error {
	provider, settings, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = settings.Agent.MaxTurns
	}

	workspace := opts.Workspace
	if workspace == "" {
		// Fresh directory per task so concurrent runs never collide.
		workspace = filepath.Join(settings.Agent.Workspace, "task-"+uuid.NewString()[:8])
	}

	cfg := agent.Config{
		Workspace:        workspace,
		MaxTurns:         maxTurns,
		MaxTokens:        settings.LLM.MaxTokens,
		Temperature:      settings.LLM.Temperature,
		ShellTimeoutSecs: settings.Agent.ShellTimeoutSecs,
	}
	if opts.Verbose {
		cfg.Logger = stderrLogger{}
	}

	loop, err := agent.New(cfg, provider)
	if err != nil {
		return err
	}

	var terminal agent.Event
	for ev := range loop.Run(ctx, task) {
		if opts.JSON {
			printJSON(ev)
		} else {
			printEvent(ev, opts.Verbose)
		}
		if ev.Terminal() {
			terminal = ev
		}
	}

	if terminal.Type == agent.EventError {
		return fmt.Errorf("task failed: %s", terminal.Content)
	}
	return nil
}

// printJSON emits one event as a JSON line.
func printJSON(ev agent.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to encode event: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// printEvent renders one event for human consumption.
func printEvent(ev agent.Event, verbose bool) {
	switch ev.Type {
	case agent.EventStart:
		fmt.Printf("Task: %s\nModel: %s | Workspace: %s | Max turns: %d\n\n",
			ev.Task, ev.Model, ev.Workspace, ev.MaxTurns)
	case agent.EventText:
		fmt.Printf("%s\n", ev.Content)
	case agent.EventToolStart:
		args := string(ev.Args)
		if !verbose && len(args) > 120 {
			args = args[:120] + "..."
		}
		fmt.Printf("  → %s(%s)\n", ev.Tool, args)
	case agent.EventToolResult:
		if verbose {
			fmt.Printf("  ← %s: %s\n", ev.Tool, firstLine(ev.Result))
		} else if !ev.Success {
			fmt.Printf("  ← %s failed: %s\n", ev.Tool, firstLine(ev.Result))
		}
	case agent.EventFileChange:
		if ev.Change != nil {
			fmt.Printf("  %s %s (+%d -%d)\n", ev.Change.Action, ev.Change.Path, ev.Change.Added, ev.Change.Removed)
		}
	case agent.EventUsage:
		if verbose {
			fmt.Printf("  tokens: %d in, %d out (total %d/%d)\n",
				ev.InputTokens, ev.OutputTokens, ev.TotalInputTokens, ev.TotalOutputTokens)
		}
	case agent.EventTurn:
		fmt.Printf("[turn %d] %s\n\n", ev.Turn, ev.Display)
	case agent.EventWarning:
		fmt.Fprintf(os.Stderr, "Warning: %s\n", ev.Content)
	case agent.EventCompaction:
		if verbose {
			fmt.Printf("  %s\n", ev.Content)
		}
	case agent.EventDone:
		fmt.Printf("Completed in %d turns, %d tool calls (%s)\n",
			ev.Turns, ev.TotalToolCalls, ev.Duration.Round(time.Millisecond))
		printChanges(ev.FileChanges)
	case agent.EventError:
		fmt.Fprintf(os.Stderr, "Error: %s\n", ev.Content)
		printChanges(ev.FileChanges)
	}
}

func printChanges(changes []tools.FileChange) {
	if len(changes) == 0 {
		return
	}
	fmt.Println("\nFile changes:")
	for _, c := range changes {
		fmt.Printf("  %s %s (+%d -%d)\n", c.Action, c.Path, c.Added, c.Removed)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ListTools lists the standard tool set.
func ListTools(verbose bool) error {
	// A throwaway workspace gives us a fully registered catalog to print.
	dir, err := os.MkdirTemp("", "theseus-tools-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	registry, _, err := tools.ForWorkspace(dir, tools.Options{})
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()

	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}

func createProvider(providerName string) (llm.Provider, config.Settings, error) {
	if providerName == "" {
		providerName = os.Getenv("LLM_PROVIDER")
	}
	if providerName == "" {
		return nil, config.Settings{}, fmt.Errorf("--provider is required (or set LLM_PROVIDER)")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	provider, err := providerType.
		Model(settings.LLM.Model).
		APIKey(apiKey)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return provider, settings, nil
}
