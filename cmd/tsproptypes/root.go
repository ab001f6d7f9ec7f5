package main

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsproptypes/pkg/analyzer"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
	"github.com/gnana997/tsproptypes/pkg/scanner"
	"github.com/gnana997/tsproptypes/pkg/util"
)

// options are the global flags merged with the project config.
type options struct {
	configPath        string
	format            string
	logLevel          string
	logFormat         string
	checkDeclarations bool
	maxProperties     int
	maxDepth          int
	excludeProps      []string
	workers           int

	project *ProjectConfig
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tsproptypes",
		Short: "Extract React component props from TypeScript as PropTypes",
		Long: `tsproptypes discovers React components in TypeScript sources and converts
their props types into PropType descriptions.

Examples:
  tsproptypes parse src/Button.tsx          # Components of one file as JSON
  tsproptypes parse -p . src/Button.tsx     # Resolve imports across the project
  tsproptypes scan src --format text        # Every component under src
  tsproptypes watch src                     # Rescan on every change
  tsproptypes serve                         # MCP server on stdio`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "Project config file")
	flags.StringVarP(&opts.format, "format", "f", string(proptypes.FormatJSON), "Output format: json or text")
	flags.StringVar(&opts.logLevel, "log-level", string(util.LevelWarn), "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", string(util.FormatText), "Log format: text or json")
	flags.BoolVar(&opts.checkDeclarations, "check-declarations", false, "Discover components declared in ambient declarations")
	flags.IntVar(&opts.maxProperties, "max-properties", 0, "Largest object type expanded into a shape (default 50)")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "Deepest object type expanded into a shape (default 3)")
	flags.StringSliceVar(&opts.excludeProps, "exclude-prop", nil, "Prop names to leave out (repeatable)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Parallel workers (default: number of CPUs)")

	root.AddCommand(
		newParseCmd(opts),
		newScanCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the project config, applies it beneath the flags the user set,
// and builds the logger.
func (o *options) load(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")
	project, err := loadProjectConfig(o.configPath, explicit)
	if err != nil {
		return err
	}
	o.project = project
	o.applyProject(cmd)

	if _, err := proptypes.ParseFormat(o.format); err != nil {
		return err
	}
	logCfg := util.DefaultLoggerConfig()
	logCfg.Level = util.ParseLogLevel(o.logLevel)
	logCfg.Format = util.LogFormat(o.logFormat)
	logCfg.Output = cmd.ErrOrStderr()
	o.logger = util.NewLogger(logCfg)
	if project != nil {
		o.logger.Debug("loaded project config", "path", o.configPath)
	}
	return nil
}

func (o *options) applyProject(cmd *cobra.Command) {
	p := o.project
	if p == nil {
		return
	}
	unset := func(name string) bool { return !cmd.Flags().Changed(name) }

	if unset("format") && p.Format != "" {
		o.format = p.Format
	}
	if unset("log-level") && p.LogLevel != "" {
		o.logLevel = p.LogLevel
	}
	if unset("log-format") && p.LogFormat != "" {
		o.logFormat = p.LogFormat
	}
	if unset("check-declarations") {
		o.checkDeclarations = p.CheckDeclarations
	}
	if unset("max-properties") && p.MaxProperties > 0 {
		o.maxProperties = p.MaxProperties
	}
	if unset("max-depth") && p.MaxDepth > 0 {
		o.maxDepth = p.MaxDepth
	}
	if unset("exclude-prop") && len(p.ExcludeProps) > 0 {
		o.excludeProps = p.ExcludeProps
	}
	if unset("workers") && p.Workers > 0 {
		o.workers = p.Workers
	}
}

func (o *options) outputFormat() proptypes.Format {
	format, err := proptypes.ParseFormat(o.format)
	if err != nil {
		return proptypes.FormatJSON
	}
	return format
}

// scanConfig builds the scanner configuration for the effective options.
func (o *options) scanConfig() scanner.ScanConfig {
	cfg := scanner.DefaultScanConfig()
	if p := o.project; p != nil {
		if len(p.Include) > 0 {
			cfg.Include = p.Include
		}
		if len(p.Exclude) > 0 {
			cfg.Exclude = p.Exclude
		}
		if len(p.ReactModules) > 0 {
			cfg.Analyzer.ReactModules = p.ReactModules
		}
	}
	cfg.Workers = o.workers
	cfg.Analyzer.CheckDeclarations = o.checkDeclarations
	cfg.Analyzer.Logger = o.logger

	if o.maxProperties > 0 || o.maxDepth > 0 {
		cfg.Analyzer.ShouldResolveObject = analyzer.ResolveLimits(o.maxProperties, o.maxDepth)
	}
	if len(o.excludeProps) > 0 {
		cfg.Analyzer.ShouldInclude = analyzer.ExcludeProps(o.excludeProps...)
	}

	excluded := slices.Clone(o.excludeProps)
	slices.Sort(excluded)
	cfg.OptionsKey = fmt.Sprintf("props=%d|depth=%d|exclude=%s",
		o.maxProperties, o.maxDepth, strings.Join(excluded, ","))
	return cfg
}

func (o *options) newScanner() (*scanner.Scanner, error) {
	s, err := scanner.NewScanner(scanner.Options{Logger: o.logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return s, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tsproptypes %s\n", version)
		},
	}
}
