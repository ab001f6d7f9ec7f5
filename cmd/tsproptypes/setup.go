package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
)

const serverName = "tsproptypes"

// agent describes where an AI agent reads project-level MCP servers from.
type agent struct {
	ID          string
	DisplayName string
	// Marker is a path whose presence means the project uses the agent.
	Marker     string
	ConfigPath string
	// ServersKey is the JSON key holding the server map.
	ServersKey  string
	ExtraFields map[string]string
}

var agents = []agent{
	{
		ID: "claude", DisplayName: "Claude Code",
		Marker: ".claude", ConfigPath: ".mcp.json", ServersKey: "mcpServers",
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Marker: ".cursor", ConfigPath: filepath.Join(".cursor", "mcp.json"), ServersKey: "mcpServers",
	},
	{
		ID: "vscode", DisplayName: "VS Code",
		Marker: ".vscode", ConfigPath: filepath.Join(".vscode", "mcp.json"), ServersKey: "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
}

func agentIDs() []string {
	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	return ids
}

func newSetupCmd() *cobra.Command {
	var (
		dir      string
		selected []string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with the project's AI agents",
		Long: `Setup adds a tsproptypes entry to the project-level MCP config of every
agent the project uses, detected by its settings directory. --agent picks
agents explicitly. Existing entries are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range selected {
				if !slices.Contains(agentIDs(), id) {
					return fmt.Errorf("unknown agent %q (want one of %v)", id, agentIDs())
				}
			}
			return runSetup(cmd.OutOrStdout(), dir, selected)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Project directory")
	cmd.Flags().StringSliceVar(&selected, "agent", nil, fmt.Sprintf("Agents to configure %v (default: detected)", agentIDs()))
	return cmd
}

func runSetup(w io.Writer, dir string, selected []string) error {
	var targets []agent
	for _, a := range agents {
		if len(selected) > 0 {
			if slices.Contains(selected, a.ID) {
				targets = append(targets, a)
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, a.Marker)); err == nil {
			targets = append(targets, a)
		}
	}
	if len(targets) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected. Use --agent to pick one.")
		return nil
	}

	for _, a := range targets {
		path := filepath.Join(dir, a.ConfigPath)
		changed, err := configureAgent(a, path)
		if err != nil {
			return fmt.Errorf("failed to configure %s: %w", a.DisplayName, err)
		}
		if changed {
			fmt.Fprintf(w, "  + %s configured (%s)\n", a.DisplayName, a.ConfigPath)
		} else {
			fmt.Fprintf(w, "  * %s already configured\n", a.DisplayName)
		}
	}
	return nil
}

func configureAgent(a agent, path string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	merged, err := mergeServerEntry(existing, a.ServersKey, a.ExtraFields)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if merged == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}
	return true, os.WriteFile(path, merged, 0o644)
}

// mergeServerEntry adds the tsproptypes server under serversKey of the JSON
// config in existing. It returns nil when the entry is already present.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	entry := map[string]any{
		"command": serverName,
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	servers[serverName] = entry
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
