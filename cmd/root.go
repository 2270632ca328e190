package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/sungit/sungit/internal/config"
	"github.com/sungit/sungit/internal/git"
	"github.com/sungit/sungit/internal/intent"
	"github.com/sungit/sungit/internal/llm"
	"github.com/sungit/sungit/internal/lock"
	"github.com/sungit/sungit/internal/message"
	"github.com/sungit/sungit/internal/workflow"
)

var (
	cfgFile        string
	dryRun         bool
	autoYes        bool
	verbose        bool
	timeoutSeconds int
	configErr      error
	rootCtx        = context.Background()

	rootCmd = &cobra.Command{
		Use:   "sungit [utterance...]",
		Short: "sungit - Smart Git Workflow",
		Long: `sungit turns "commit my code" into a safe git round trip: pull with
rebase, resolve conflicts interactively, generate a conventional commit
message with an LLM, then commit and push.

Run it bare to sync the current repository, or pass a natural-language
utterance ("commit code", "保存并推送") to let the intent detector decide.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return handleErrors(runSync(cmd.Context(), args))
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// Execute runs the root command. SetContext must be called first when signal
// cancellation is wanted.
func Execute() error {
	return rootCmd.ExecuteContext(rootCtx)
}

// SetContext installs the context commands run under.
func SetContext(ctx context.Context) {
	rootCtx = ctx
}

// RootCmd exposes the root command for documentation generators.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $HOME/.config/sungit/config.yaml)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the workflow but stop before committing")
	rootCmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Automatically confirm the commit message")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show git commands and phase transitions")
	rootCmd.Flags().IntVar(&timeoutSeconds, "timeout", 0,
		"Per-git-command timeout in seconds (overrides git_timeout from config)")

	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func runSync(ctx context.Context, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	utterance := strings.TrimSpace(strings.Join(args, " "))
	if utterance != "" {
		detector := intent.NewDetector(cfg.Triggers...)
		if !detector.Match(utterance) {
			return fmt.Errorf("%q does not look like a commit request (try \"commit code\")", utterance)
		}
	}

	if !autoYes && isatty.IsTerminal(os.Stdin.Fd()) {
		configured, err := ensureLLMConfigured(cfg, os.Stdin, errWriter(), runInitWizard)
		if err != nil {
			return err
		}
		if configured {
			// The wizard may have written new values.
			if cfg, err = config.GetConfig(); err != nil {
				return err
			}
		}
	}

	timeout := time.Duration(cfg.GitTimeout) * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}

	gitClient := git.NewClient(git.Options{
		Verbose: verbose,
		Timeout: timeout,
		Logger:  errWriter(),
	})
	generator := message.NewGenerator(llm.NewClient(llm.Options{}), cfg)

	flow := workflow.NewSyncFlow(gitClient, generator, afero.NewOsFs(), workflow.Options{
		DryRun:    dryRun,
		AutoYes:   autoYes,
		Verbose:   verbose,
		Intent:    utterance,
		OutWriter: outWriter(),
		ErrWriter: errWriter(),
	})

	report, err := flow.Run(ctx)
	printReport(report)
	return err
}

func printReport(report workflow.Report) {
	fmt.Fprintln(errWriter(), "Result: "+report.Summary())
	if report.PartialSuccess() {
		fmt.Fprintln(errWriter(), "The commit exists locally; push again once the remote issue is fixed.")
	}
}

// handleErrors attaches a usage hint to the errors a user can act on.
func handleErrors(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, workflow.ErrNoChanges):
		return fmt.Errorf("%w\nHint: edit some files first, everything is already committed and pushed", err)
	case errors.Is(err, workflow.ErrDivergedAgain):
		return fmt.Errorf("%w\nHint: the remote keeps advancing; run sungit again once it settles", err)
	case errors.Is(err, git.ErrNotRepository):
		return fmt.Errorf("%w\nHint: run sungit inside a git repository", err)
	case errors.Is(err, git.ErrToolUnavailable):
		return fmt.Errorf("%w\nHint: check that git is installed and the network is reachable", err)
	case errors.Is(err, lock.ErrBusy):
		return fmt.Errorf("%w\nHint: wait for the other sungit run to finish", err)
	}
	return err
}
