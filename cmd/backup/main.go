package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/semmidev/stowaway/internal/app"
	"github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
	"github.com/semmidev/stowaway/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	exitOK          = 0
	exitFatal       = 1
	exitPartialFail = 2
)

type options struct {
	configPath    string
	bucket        string
	prefix        string
	timestamp     bool
	recipients    []string
	schedule      string
	retentionDays int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := exitOK

	cmd := newRootCmd(func(report *domain.Report) {
		if report != nil && report.Failed() > 0 {
			code = exitPartialFail
		}
	})
	cmd.SetArgs(normalizeArgs(args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	return code
}

func newRootCmd(onReport func(*domain.Report)) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "backup --bucket NAME [flags] FOLDER [FOLDER...]",
		Short: "Back up local folders to an object storage bucket",
		Long: `Archives each folder into a zip file and uploads it to the target bucket.
Object names are {prefix}_{timestamp}{folder}.zip. Mail settings for
notifications are read from STOWAWAY_MAIL_* environment variables or the
config file.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := domain.BackupJob{
				BucketName:    opts.bucket,
				Folders:       args,
				AddTimestamp:  opts.timestamp,
				Recipients:    opts.recipients,
				RetentionDays: opts.retentionDays,
			}
			if cmd.Flags().Changed("prefix") {
				prefix := opts.prefix
				job.Prefix = &prefix
			}

			return execute(cmd, opts, job, onReport)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file")
	flags.StringVarP(&opts.bucket, "bucket", "b", "", "target bucket to which the folders are backed up")
	flags.StringVarP(&opts.prefix, "prefix", "p", "", "prefix for uploaded object names")
	flags.BoolVar(&opts.timestamp, "timestamp", false, "add a run timestamp to uploaded object names (also -ts)")
	flags.StringSliceVarP(&opts.recipients, "recipients", "e", nil, "email addresses to notify when the run completes")
	flags.StringVar(&opts.schedule, "schedule", "", "run on a six-field cron schedule instead of once")
	flags.IntVar(&opts.retentionDays, "retention-days", 0, "delete objects with this prefix older than N days (0 keeps everything)")
	_ = cmd.MarkFlagRequired("bucket")

	return cmd
}

func execute(cmd *cobra.Command, opts *options, job domain.BackupJob, onReport func(*domain.Report)) error {
	if opts.retentionDays < 0 {
		return fmt.Errorf("--retention-days must not be negative")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	if opts.schedule != "" {
		return application.RunScheduled(ctx, opts.schedule, job)
	}

	report, err := application.RunOnce(ctx, job)
	if err != nil {
		return err
	}

	for _, line := range usecase.SummaryLines(report) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	onReport(report)

	return nil
}

// normalizeArgs maps the two-letter -ts switch, which pflag cannot express
// as a shorthand, onto --timestamp.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if arg == "-ts" {
			arg = "--timestamp"
		}
		out = append(out, arg)
	}
	return out
}
