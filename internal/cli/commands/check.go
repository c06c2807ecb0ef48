package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/logger"
	"github.com/madgresso/madgresso/pkg/output"
	"github.com/madgresso/madgresso/pkg/parser"
	"github.com/madgresso/madgresso/pkg/review"
	"github.com/madgresso/madgresso/pkg/webhook"
)

// CheckOptions holds command-line options for the check command.
type CheckOptions struct {
	Output  string
	OutFile string
	Rules   []string
	Verbose bool
	Quiet   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(g *GlobalOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [flags] <claim-file>...",
		Short: "Check claim files without submitting them",
		Long: `Read claim files exactly as submit would and report what would be sent.

Checks:
  - unknown_type    item types missing from expense_types
  - duplicate_item  items entered twice
  - receipts        receipts that are missing, repeated or unreadable PDFs

Output formats: text, json, claim (a single normalised claim file), xlsx.

Exit codes:
  0 - No issues found
  1 - Issues found
  2 - Configuration, parse or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|claim|xlsx)")
	cmd.Flags().StringVar(&opts.OutFile, "out", "", "Write output to FILE instead of stdout")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run specific check(s) only (can be repeated)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List every item and issue detail, log at debug level")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details, log errors only")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, g *GlobalOptions, opts *CheckOptions) error {
	start := time.Now()
	ctx, log := commandContext(cmd)
	if opts.Verbose || opts.Quiet {
		log = log.Level(logger.LevelFor(opts.Verbose, opts.Quiet))
	}

	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return err
	}

	formatter, err := output.New(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Color:   opts.OutFile == "" && !color.NoColor,
	})
	if err != nil {
		return err
	}

	var reviewOpts []review.ReviewerOption
	if len(opts.Rules) > 0 {
		reviewOpts = append(reviewOpts, review.WithRuleFilter(opts.Rules))
	}
	reviewer, err := review.NewReviewer(cfg.ExpenseTypes, reviewOpts...)
	if err != nil {
		return fmt.Errorf("creating reviewer: %w", err)
	}

	sources, names, err := claimSources(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	source := parser.NewConcatSource(sources...)
	defer source.Close()

	c := claim.New(source,
		claim.WithDefaults(cfg.DefaultAccount, cfg.DefaultSubproject),
		claim.WithLogger(log),
	)
	if _, err := c.Drain(ctx); err != nil {
		return err
	}
	summary, err := c.Snapshot()
	if err != nil {
		return err
	}

	result, err := reviewer.Review(ctx, summary)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	report := output.NewReport(summary, result, output.Metadata{
		ConfigFile:  g.ConfigPath,
		Sources:     names,
		Month:       summary.MonthOr(claim.MonthOf(time.Now())),
		Comment:     summary.CommentOr(""),
		GeneratedAt: time.Now(),
		Duration:    time.Since(start),
	})

	if err := writeReport(ctx, cmd.OutOrStdout(), opts.OutFile, formatter, report); err != nil {
		return err
	}

	sendReportWebhooks(ctx, cfg, opts, report, log)

	if report.HasIssues() {
		ExitCode = 1
	}
	return nil
}

func writeReport(ctx context.Context, stdout io.Writer, path string, f output.Formatter, report *output.Report) error {
	if path == "" {
		if err := f.Format(ctx, report, stdout); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
		return nil
	}

	file, err := os.Create(path) // #nosec G304 -- user-chosen output file
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := f.Format(ctx, report, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("formatting output: %w", err)
	}
	return file.Close()
}

// sendReportWebhooks posts the report to the webhooks whose trigger covers
// checks. Failures are logged and do not fail the check.
func sendReportWebhooks(ctx context.Context, cfg *config.Config, opts *CheckOptions, report *output.Report, log zerolog.Logger) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()
	for _, wh := range webhooks {
		if !wh.Trigger.FiresOnCheck(report.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Event:   "report",
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		if resp.Success() {
			log.Info().Str("webhook", name).Int("status", resp.StatusCode).Dur("duration", resp.Duration).Msg("webhook sent")
		} else {
			log.Warn().Err(resp.Error).Str("webhook", name).Msg("webhook failed")
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *CheckOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
