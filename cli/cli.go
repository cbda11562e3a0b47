package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"ccf-policy/config"
	"ccf-policy/core/appbootstrap"
	"ccf-policy/core/dataset"
	"ccf-policy/core/mapping"
	"ccf-policy/core/policy"
	"ccf-policy/core/render"
	"ccf-policy/core/utils"
)

const usage = `usage: ccfctl <command> [flags]

commands:
  process                          convert raw CSV exports into processed JSON
  generate <config> [-format md|docx]
                                   render a policy from a JSON or YAML config
  mapping -frameworks a,b          write the framework mapping analysis
  domains                          list control domains
  standards                        list policy standards
  templates                        list policy templates
  preview <file.md>                render a Markdown file in the terminal
`

// Run executes one command and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := utils.NewLoggerWithOptions(stderr, cfg.LogLevel, cfg.LogFormat)
	c := &command{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	switch args[0] {
	case "process":
		err = c.process(args[1:])
	case "generate":
		err = c.generate(args[1:])
	case "mapping":
		err = c.mapping(args[1:])
	case "domains":
		err = c.domains()
	case "standards":
		err = c.standards()
	case "templates":
		err = c.templates()
	case "preview":
		err = c.preview(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type command struct {
	cfg    *config.AppConfig
	logger *utils.Logger
	stdout io.Writer
	stderr io.Writer
}

func (c *command) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *command) core(ctx context.Context) (*appbootstrap.Core, error) {
	return appbootstrap.InitCore(ctx, c.cfg, c.logger)
}

func (c *command) process(args []string) error {
	fs := c.flags("process")
	raw := fs.String("raw", c.cfg.Data.RawDir, "directory with the CSV exports")
	out := fs.String("out", c.cfg.Data.ProcessedDir, "directory for the processed JSON files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	report, err := dataset.Process(context.Background(), *raw, *out, c.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Processed %d controls, %d guidance records, %d evidence items\n", report.Controls, report.Guidance, report.Evidence)
	for _, f := range report.Files {
		fmt.Fprintf(c.stdout, "  %s\n", f)
	}
	return nil
}

func (c *command) generate(args []string) error {
	fs := c.flags("generate")
	format := fs.String("format", c.cfg.Output.DefaultFormat, "output format: md or docx")
	// Allow the config path before or after the flags.
	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		path = fs.Arg(0)
	}
	if path == "" {
		return errors.New("generate: config file required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pc, err := policy.ParseConfig(data, configFormat(path))
	if err != nil {
		return err
	}

	ctx := context.Background()
	core, err := c.core(ctx)
	if err != nil {
		return err
	}
	defer core.Close()
	out, err := core.Generator.Export(ctx, pc, *format)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Generated %s (%d controls, template %s)\n", out.Path, len(out.ControlIDs), out.TemplateID)
	return nil
}

func configFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return ""
}

func (c *command) mapping(args []string) error {
	fs := c.flags("mapping")
	frameworks := fs.String("frameworks", "", "comma separated framework keys")
	out := fs.String("out", "", "write the analysis to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()
	core, err := c.core(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	a := mapping.NewEngine(core.Data).Analyze(strings.Split(*frameworks, ","))
	if len(a.Frameworks) == 0 {
		return &policy.ValidationError{Fields: []string{"frameworks"}}
	}
	md := render.AnalysisMarkdown(a, time.Now())
	if *out == "" {
		_, err = io.WriteString(c.stdout, md)
		return err
	}
	if err := os.WriteFile(*out, []byte(md), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Wrote mapping analysis for %d controls to %s\n", a.Total(), *out)
	return nil
}

func (c *command) domains() error {
	core, err := c.core(context.Background())
	if err != nil {
		return err
	}
	defer core.Close()
	for _, d := range core.Data.Domains() {
		fmt.Fprintln(c.stdout, d)
	}
	return nil
}

func (c *command) standards() error {
	core, err := c.core(context.Background())
	if err != nil {
		return err
	}
	defer core.Close()
	for _, s := range mapping.NewEngine(core.Data).Standards() {
		fmt.Fprintf(c.stdout, "%s (%d controls)\n", s.Name, s.Controls)
	}
	return nil
}

func (c *command) templates() error {
	core, err := c.core(context.Background())
	if err != nil {
		return err
	}
	defer core.Close()
	list := core.Templates.List()
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func (c *command) preview(args []string) error {
	fs := c.flags("preview")
	style := fs.String("style", "dark", "glamour style name or path")
	width := fs.Int("width", 100, "word wrap width")
	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		path = fs.Arg(0)
	}
	if path == "" {
		return errors.New("preview: markdown file required")
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	meta, body, err := policy.SplitFrontMatter(string(doc))
	if err != nil {
		return fmt.Errorf("front matter: %w", err)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(*style),
		glamour.WithWordWrap(*width),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(body)
	if err != nil {
		return err
	}
	if meta != nil {
		fmt.Fprintf(c.stdout, "%v v%v (%v), next review %v\n", meta["title"], meta["version"], meta["classification"], meta["next_review"])
	}
	_, err = io.WriteString(c.stdout, out)
	return err
}
