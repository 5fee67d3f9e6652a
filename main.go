package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Package-level flag variables shared across subcommands.
var (
	flagOutputFile    string
	flagJSONOutput    bool
	flagBrowser       string
	flagTimeout       string
	flagVerbose       bool
	flagConfigPath    string
	flagInput         string
	flagFormat        string
	flagNumParas      int
	flagParaLength    string
	flagHeaders       bool
	flagHeaderStyle   string
	flagLists         bool
	flagUL            bool
	flagOL            bool
	flagDL            bool
	flagInlineStyling bool
	flagEmphasis      string
	flagLinkStyle     string
	flagLink          bool
	flagBQ            bool
	flagCode          bool
	flagCodeStyle     string
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loremtext [flags] [command]",
		Short: "Generate lorem ipsum text as plain text, HTML or Markdown",
		Long: `loremtext generates placeholder text. Plain text and HTML come from
loripsum.net, Markdown from Lorem Markdownum. Options that do not apply to
the chosen format are ignored; run "loremtext options" to see which apply.`,
		TraverseChildren: true,
		SilenceUsage:     true,
		Args:             cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd)
		},
	}

	defaults := defaultOptions()

	// Persistent flags, shared by every subcommand.
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutputFile, "output", "o", "", "write generated text to file")
	pf.BoolVarP(&flagJSONOutput, "json", "j", false, "output items as a JSON array")
	pf.StringVarP(&flagBrowser, "browser", "b", "native", "client profile: native, chrome, firefox")
	pf.StringVarP(&flagTimeout, "timeout", "t", "30s", "per-request timeout")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log request/response details to stderr")
	pf.StringVar(&flagConfigPath, "config", "", "config file path (default: ~/.loremtext/config.yaml)")
	pf.StringVarP(&flagInput, "input", "i", "", "JSON items to annotate with generated text (- for stdin)")

	pf.StringVarP(&flagFormat, "format", "f", string(FormatPlaintext), "output format: plaintext, html, markdown")
	pf.IntVarP(&flagNumParas, "num-paras", "n", defaults.NumParas, "number of paragraphs (1-15)")
	pf.StringVar(&flagParaLength, "para-length", defaults.ParaLength, "paragraph length: short, medium, long, verylong")
	pf.BoolVar(&flagHeaders, "headers", false, "include headers")
	pf.StringVar(&flagHeaderStyle, "header-style", defaults.HeaderStyle, "markdown headers using: hashes, underlines")
	pf.BoolVar(&flagLists, "lists", false, "include lists")
	pf.BoolVar(&flagUL, "ul", false, "include unordered lists (html)")
	pf.BoolVar(&flagOL, "ol", false, "include ordered lists (html)")
	pf.BoolVar(&flagDL, "dl", false, "include description lists (html)")
	pf.BoolVar(&flagInlineStyling, "inline-styling", false, "include bold, italics, links, etc.")
	pf.StringVar(&flagEmphasis, "emphasis", defaults.InlineEmphasis, "markdown emphasis using: asterisks, underscores")
	pf.StringVar(&flagLinkStyle, "link-style", defaults.MarkdownLinkStyle, "markdown link style: inline, reference")
	pf.BoolVar(&flagLink, "link", false, "include links to external websites (html)")
	pf.BoolVar(&flagBQ, "bq", false, "include blockquotes")
	pf.BoolVar(&flagCode, "code", false, "include code blocks")
	pf.StringVar(&flagCodeStyle, "code-style", defaults.CodeBlockStyle, "markdown code blocks using: indents, backticks")

	rootCmd.AddCommand(newOptionsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// newOptionsCmd creates the "options" subcommand.
func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the options that apply to the selected format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			format, err := parseFormat(cfg.Format)
			if err != nil {
				return err
			}
			formatOptionTable(cmd.OutOrStdout(), format, visibleOptions(format, cfg.Options))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "loremtext", version)
		},
	}
}

// flagOverrides copies each explicitly set flag over the loaded config.
var flagOverrides = map[string]func(*fileConfig){
	"browser":        func(c *fileConfig) { c.Browser = flagBrowser },
	"timeout":        func(c *fileConfig) { c.Timeout = flagTimeout },
	"format":         func(c *fileConfig) { c.Format = flagFormat },
	"num-paras":      func(c *fileConfig) { c.Options.NumParas = flagNumParas },
	"para-length":    func(c *fileConfig) { c.Options.ParaLength = flagParaLength },
	"headers":        func(c *fileConfig) { c.Options.Headers = flagHeaders },
	"header-style":   func(c *fileConfig) { c.Options.HeaderStyle = flagHeaderStyle },
	"lists":          func(c *fileConfig) { c.Options.Lists = flagLists },
	"ul":             func(c *fileConfig) { c.Options.UL = flagUL },
	"ol":             func(c *fileConfig) { c.Options.OL = flagOL },
	"dl":             func(c *fileConfig) { c.Options.DL = flagDL },
	"inline-styling": func(c *fileConfig) { c.Options.InlineStyling = flagInlineStyling },
	"emphasis":       func(c *fileConfig) { c.Options.InlineEmphasis = flagEmphasis },
	"link-style":     func(c *fileConfig) { c.Options.MarkdownLinkStyle = flagLinkStyle },
	"link":           func(c *fileConfig) { c.Options.Link = flagLink },
	"bq":             func(c *fileConfig) { c.Options.BQ = flagBQ },
	"code":           func(c *fileConfig) { c.Options.Code = flagCode },
	"code-style":     func(c *fileConfig) { c.Options.CodeBlockStyle = flagCodeStyle },
}

// resolveConfig layers defaults, config file, environment and changed flags.
func resolveConfig(changed func(name string) bool) (fileConfig, error) {
	path := flagConfigPath
	explicit := changed("config")
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path, explicit, os.Getenv)
	if err != nil {
		return cfg, err
	}
	for name, apply := range flagOverrides {
		if changed(name) {
			apply(&cfg)
		}
	}
	return cfg, nil
}

// runGenerate reads parameters once, generates text for every input item
// and writes the result.
func runGenerate(cmd *cobra.Command) error {
	cfg, err := resolveConfig(cmd.Flags().Changed)
	if err != nil {
		return err
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return err
	}
	opts := cfg.Options
	if err := opts.validate(); err != nil {
		return err
	}
	clientCfg, err := cfg.clientConfig()
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), flagVerbose)

	items, err := loadItems(flagInput)
	if err != nil {
		return err
	}

	client, err := newClient(clientCfg, log)
	if err != nil {
		return err
	}
	log.Debug().
		Str("format", string(format)).
		Int("items", len(items)).
		Str("profile", client.profile.Name).
		Msg("Generating text")

	out, err := newGenerator(client, log).runBatch(cmd.Context(), items, format, opts)
	if err != nil {
		return err
	}

	if flagOutputFile == "" {
		return formatOutput(cmd.OutOrStdout(), out, flagJSONOutput)
	}
	return writeOutputFile(flagOutputFile, out, flagJSONOutput)
}

// writeOutputFile writes items to path, reporting a failed close.
func writeOutputFile(path string, items []Item, asJSON bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	return formatOutput(f, items, asJSON)
}
