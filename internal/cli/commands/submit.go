package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/madgresso/madgresso/internal/cli/plugins"
	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/parser"
	"github.com/madgresso/madgresso/pkg/submit"
	"github.com/madgresso/madgresso/pkg/webhook"
)

// SubmitOptions holds command-line options for the submit command.
type SubmitOptions struct {
	Interactive bool
	MonthYear   string
	Comment     string
	WriteFile   string
	Driver      string
	ClaimID     string
	DryRun      bool
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(g *GlobalOptions) *cobra.Command {
	opts := &SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit [flags] [claim-file...]",
		Short: "Submit an expense claim",
		Long: `Read claim files and submit their items through the form driver.

Files are read in order; "-" reads standard input. With -i, items are then
typed in and submitted line by line until end of input (Ctrl-D).

Items whose type is not listed under expense_types are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args, g, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Read further items from the terminal (Ctrl-D to finish)")
	cmd.Flags().StringVarP(&opts.MonthYear, "month-year", "m", "", "Month/year of the claim (default: current month)")
	cmd.Flags().StringVarP(&opts.Comment, "comment", "r", "", "Claim comment")
	cmd.Flags().StringVarP(&opts.WriteFile, "write", "w", "", "In interactive mode, save input to FILE so it can be replayed")
	cmd.Flags().StringVarP(&opts.Driver, "driver", "o", "", "Form driver to use instead of the configured one")
	cmd.Flags().StringVar(&opts.ClaimID, "id", "", "Claim ID; reuse an earlier one so webhooks treat a resend as the same claim")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the claim instead of submitting it")

	return cmd
}

func runSubmit(cmd *cobra.Command, args []string, g *GlobalOptions, opts *SubmitOptions) error {
	ctx, log := commandContext(cmd)

	if !opts.Interactive && len(args) == 0 {
		return errors.New("no claim files given (pass files, \"-\" for stdin, or -i)")
	}

	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return err
	}

	month := opts.MonthYear
	if month == "" {
		month = claim.MonthOf(time.Now())
	}

	sources, _, err := claimSources(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if opts.Interactive {
		src, closeMirror, err := interactiveSource(cmd, opts, month)
		if err != nil {
			return err
		}
		defer closeMirror()
		sources = append(sources, src)
	}

	source := parser.NewConcatSource(sources...)
	defer source.Close()

	claimOpts := []claim.Option{
		claim.WithDefaults(cfg.DefaultAccount, cfg.DefaultSubproject),
		claim.WithLogger(log),
	}
	if opts.ClaimID != "" {
		claimOpts = append(claimOpts, claim.WithID(opts.ClaimID))
	}
	c := claim.New(source, claimOpts...)

	submitter, err := newSubmitter(ctx, cmd, cfg, opts, log)
	if err != nil {
		return err
	}
	defer submitter.Close()

	result, err := submit.Run(ctx, c, submitter, submit.Header{Month: month, Comment: opts.Comment}, cfg.ExpenseTypes, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Claim %s: %d item(s) submitted, %d skipped\n", result.ClaimID, result.Submitted, result.Skipped)
	return nil
}

// interactiveSource prepares terminal entry. When a mirror file is
// requested it starts with the month and comment so a replay reproduces the
// session.
func interactiveSource(cmd *cobra.Command, opts *SubmitOptions, month string) (parser.LineSource, func(), error) {
	var srcOpts []parser.InteractiveOption
	closeMirror := func() {}

	if opts.WriteFile != "" {
		f, err := os.Create(opts.WriteFile) // #nosec G304 -- user-chosen output file
		if err != nil {
			return nil, nil, fmt.Errorf("creating mirror file: %w", err)
		}
		if _, err := fmt.Fprintf(f, "Month: %s\nComment: %s\n", month, opts.Comment); err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("writing mirror file: %w", err)
		}
		srcOpts = append(srcOpts, parser.WithMirror(f))
		closeMirror = func() { _ = f.Close() }
	}

	prompt := color.New(color.FgCyan).Sprint("> ")
	srcOpts = append(srcOpts, parser.WithPrompt(cmd.ErrOrStderr(), prompt))

	fmt.Fprintln(cmd.ErrOrStderr(), "Please enter claim below.")
	return parser.NewInteractiveSource(cmd.InOrStdin(), srcOpts...), closeMirror, nil
}

func newSubmitter(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *SubmitOptions, log zerolog.Logger) (submit.Submitter, error) {
	if opts.DryRun {
		return submit.NewPrintSubmitter(cmd.OutOrStdout(), nil), nil
	}

	if err := cfg.RequireLogin(); err != nil {
		return nil, err
	}

	driverCfg := cfg.Driver
	if opts.Driver != "" {
		driverCfg = config.DriverConfig{Name: opts.Driver, Args: cfg.Driver.Args}
	}
	path, err := plugins.ResolveDriver(driverCfg)
	if err != nil {
		if driverCfg.Path == "" && errors.Is(err, plugins.ErrPluginNotFound) {
			return nil, errors.New(plugins.FormatDriverNotFoundError(driverCfg.Name))
		}
		return nil, err
	}

	password, ok, err := cfg.ResolvePassword(ctx)
	if err != nil {
		return nil, err
	}
	login := submit.Login{URL: cfg.URL, Username: cfg.Username, Proxy: cfg.Proxy}
	if ok {
		login.Password = &password
	}

	driver := submit.NewDriverSubmitter(path, driverCfg.Args, login, cfg.ExpenseTypes,
		submit.WithDriverOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		submit.WithDriverLogger(log),
	)

	submitters := []submit.Submitter{driver}
	client := webhook.NewClient()
	for _, wh := range cfg.Webhooks {
		if wh.Trigger.FiresOnSubmit() {
			submitters = append(submitters, submit.NewWebhookSubmitter(client, wh,
				submit.BestEffort(),
				submit.WithWebhookLogger(log),
			))
		}
	}
	if len(submitters) == 1 {
		return driver, nil
	}
	return submit.Multi(submitters...), nil
}
