package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/tsproptypes/pkg/mcp"
	"github.com/gnana997/tsproptypes/pkg/mcplog"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		root    string
		logPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve exposes parse_file and scan_directory as MCP tools. Tool paths
resolve against --root and may not leave it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mcp-log") && opts.project != nil {
				logPath = opts.project.MCPLog
			}
			logger, err := mcplog.NewLogger(logPath)
			if err != nil {
				return fmt.Errorf("failed to open MCP log: %w", err)
			}
			defer logger.Close()

			s, err := opts.newScanner()
			if err != nil {
				return err
			}
			defer s.Close()

			srv, err := mcpserver.NewServer(s, opts.scanConfig(), root, logger)
			if err != nil {
				return err
			}
			opts.logger.Info("serving MCP on stdio", "root", root)
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Workspace root for tool paths")
	cmd.Flags().StringVar(&logPath, "mcp-log", "", "Append one JSON line per tool call to this file")
	return cmd
}
