package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirdoc/internal/config"
	"dirdoc/internal/docsync"
	"dirdoc/internal/logger"
	"dirdoc/internal/progress"
	"dirdoc/internal/tree"
)

// errValidationFailed makes the process exit non-zero after the issues have
// already been reported.
var errValidationFailed = errors.New("validation failed")

type app struct {
	fs     afero.Fs
	viper  *viper.Viper
	stdout io.Writer
	stderr io.Writer
	// progress is nil when no terminal status line should be drawn.
	progress func() *progress.Line
}

func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		fs:       fs,
		viper:    viper.New(),
		stdout:   stdout,
		stderr:   stderr,
		progress: progress.ForStderr,
	}

	cmd := &cobra.Command{
		Use:   "dirdoc [path]",
		Short: "Document a directory tree and keep the document in sync",
		Long: `Scan a directory into a tree document with a description for every entry.

On later runs the existing document is compared with the directory: removed
and new entries are reported, recorded descriptions are carried over and
entries without a usable description are listed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.viper.GetBool("validate-only") {
				return a.validate(a.viper.GetString("output"))
			}
			var root string
			if len(args) == 1 {
				root = args[0]
			}
			return a.sync(root)
		},
	}

	cmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "config file path")
	cmd.PersistentFlags().StringP("output", "o", config.DefaultDocument, "document path (.json, .yaml or .yml)")
	cmd.PersistentFlags().String("log-level", "error", "log level: debug, info, warn, error or off")
	cmd.PersistentFlags().String("log-format", "logfmt", "log format: logfmt or json")

	cmd.Flags().Bool("scan-only", false, "scan and write the document without comparing or validating")
	cmd.Flags().Bool("validate-only", false, "only validate the existing document")
	cmd.Flags().Bool("compact", false, "write the document without indentation")
	cmd.Flags().Bool("dry-run", false, "print the document diff instead of writing it")
	cmd.Flags().Bool("no-progress", false, "do not draw the scan progress line")

	cmd.AddCommand(newValidateCmd(a))

	_ = a.viper.BindPFlags(cmd.Flags())
	_ = a.viper.BindPFlags(cmd.PersistentFlags())
	a.viper.SetEnvPrefix("dirdoc")
	a.viper.AutomaticEnv()
	a.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return cmd
}

func (a *app) logger() log.Logger {
	return logger.New(a.stderr, a.viper.GetString("log-format"), a.viper.GetString("log-level"))
}

func (a *app) syncer() (*docsync.Syncer, error) {
	cfg, err := config.LoadConfig(a.fs, a.viper.GetString("config"))
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return docsync.New(a.fs, cfg, a.logger()), nil
}

func (a *app) sync(root string) error {
	syncer, err := a.syncer()
	if err != nil {
		return err
	}

	var line *progress.Line
	if !a.viper.GetBool("no-progress") && a.progress != nil {
		line = a.progress()
		syncer.Progress = line
	}

	result, err := syncer.Sync(docsync.Options{
		Root:     root,
		Output:   a.viper.GetString("output"),
		ScanOnly: a.viper.GetBool("scan-only"),
		Pretty:   !a.viper.GetBool("compact"),
		DryRun:   a.viper.GetBool("dry-run"),
	})
	if line != nil {
		line.Finish()
	}
	if err != nil {
		return err
	}

	if a.viper.GetBool("dry-run") {
		text, err := unifiedDiff(result.Output, result.PreviousDocument, result.Document)
		if err != nil {
			return errors.Wrap(err, "diff document")
		}
		if text == "" {
			fmt.Fprintln(a.stdout, successStyle.Render(fmt.Sprintf("[OK] %s is up to date", result.Output)))
			return nil
		}
		printDiff(a.stdout, text)
		return nil
	}

	printSyncReport(a.stdout, result)
	return nil
}

func (a *app) validate(document string) error {
	syncer, err := a.syncer()
	if err != nil {
		return err
	}

	result, _, err := syncer.ValidateDocument(document)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return errors.Errorf("document not found: %s", document)
		case errors.Is(err, tree.ErrParse):
			return errors.Wrapf(err, "parse %s", document)
		}
		return err
	}

	if result.Pass {
		fmt.Fprintln(a.stdout, successStyle.Render("[OK] Every entry has a valid description"))
		return nil
	}

	printDescriptionIssues(a.stdout, result)
	return errValidationFailed
}
