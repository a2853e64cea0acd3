package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/prompt"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// app holds the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	driver prompt.PromptDriver

	configPath string
	driverName string
	storePath  string
	key        string
	logLevel   string

	cfg     config.Config
	logger  *zap.Logger
	store   store.Store
	session *editor.Session
}

func newRootCmd(out io.Writer, driver prompt.PromptDriver) *cobra.Command {
	a := &app{out: out, driver: driver}

	root := &cobra.Command{
		Use:   "formbuilder",
		Short: "Build forms from the terminal",
		Long: `formbuilder edits a stored form definition: add inputs, group them,
reorder them and generate the reactive-form builder code and HTML template.

The definition lives in the configured store (a directory of JSON files by
default) under a key, so every command works on the same form.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, toml or json)")
	flags.StringVar(&a.driverName, "store", "", "storage driver: file, sqlite or memory")
	flags.StringVar(&a.storePath, "path", "", "store directory or sqlite database file")
	flags.StringVar(&a.key, "key", "", "key the definition is stored under")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.updateCmd(),
		a.editCmd(),
		a.renameCmd(),
		a.removeCmd(),
		a.moveCmd(),
		a.dropCmd(),
		a.reorderCmd(),
		a.ungroupCmd(),
		a.ungroupFieldCmd(),
		a.generateCmd(),
		a.importCmd(),
		a.serveCmd(),
		a.watchCmd(),
		a.resetCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Driver = a.driverName
	}
	if flags.Changed("path") {
		cfg.Store.Path = a.storePath
	}
	if flags.Changed("key") {
		cfg.Store.Key = a.key
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	session, st, err := formbuilder.Open(cmd.Context(), cfg.StoreConfig(),
		editor.WithKey(cfg.Store.Key),
		editor.WithLogger(a.logger),
	)
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrCorruptDefinition):
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; starting with an empty form\n", err)
	default:
		return err
	}
	a.session, a.store = session, st
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) promptDriver() prompt.PromptDriver {
	if a.driver == nil {
		a.driver = prompt.NewSurveyDriver(a.out)
	}
	return a.driver
}

func (a *app) prompts() *prompt.Editor {
	return prompt.NewEditor(a.promptDriver())
}
