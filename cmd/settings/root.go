package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	settings "github.com/goliatone/go-settings"
)

const envPrefix = "SETTINGS"

// cli carries the resolved global flags for one invocation.
type cli struct {
	v       *viper.Viper
	stdout  io.Writer
	stderr  io.Writer
	log     *slog.Logger
	logFile io.Closer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "settings",
		Short:         "Read and edit per-application settings files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return c.setupLogger()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.closeLog()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("name", "settings", "store name")
	flags.String("location", "", "directory holding the settings file (default: user data directory)")
	flags.String("caller", "", "caller source location hashed into the file name")
	flags.String("defaults", "", "name of a store in the same location used as defaults")
	flags.Bool("backup", true, "keep a .bak copy of the previous file on save")
	flags.Bool("verbose", false, "log persistence details to stderr")
	flags.String("log-file", "", "append JSON log records to this file")

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.getCmd(),
		c.setCmd(),
		c.unsetCmd(),
		c.keysCmd(),
		c.showCmd(),
		c.pathCmd(),
	)
	return root
}

// setupLogger fans log records out to stderr (--verbose) and to a JSON log
// file (--log-file). With neither the stores keep their discarding default.
func (c *cli) setupLogger() error {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handlers []slog.Handler
	if c.v.GetBool("verbose") {
		handlers = append(handlers, slog.NewTextHandler(c.stderr, opts))
	}
	if path := c.v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}
	if len(handlers) == 0 {
		return nil
	}
	c.log = slog.New(slogmulti.Fanout(handlers...)).With("command", "settings")
	return nil
}

func (c *cli) closeLog() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

func (c *cli) persistOptions() []settings.PersistOption {
	var opts []settings.PersistOption
	if location := c.v.GetString("location"); location != "" {
		opts = append(opts, settings.WithLocation(location))
	}
	if caller := c.v.GetString("caller"); caller != "" {
		opts = append(opts, settings.WithCallerLocation(caller))
	}
	return opts
}

// open builds the store named by --name, stacks --defaults under it and
// loads both. A missing file is not an error.
func (c *cli) open() (*settings.Store, error) {
	var defaults settings.Layer
	if name := c.v.GetString("defaults"); name != "" {
		parent, err := c.load(name, nil)
		if err != nil {
			return nil, err
		}
		defaults = parent
	}
	return c.load(c.v.GetString("name"), defaults)
}

func (c *cli) load(name string, defaults settings.Layer) (*settings.Store, error) {
	opts := []settings.Option{
		settings.WithName(name),
		settings.WithLogger(c.log),
		settings.WithBackup(c.v.GetBool("backup")),
	}
	if defaults != nil {
		opts = append(opts, settings.WithDefaults(defaults))
	}
	if location := c.v.GetString("location"); location != "" {
		opts = append(opts, settings.WithHomeDir(location))
	}
	store, err := settings.New(opts...)
	if err != nil {
		return nil, err
	}
	result := store.Load(c.persistOptions()...)
	if result.Err != nil && !errors.Is(result.Err, fs.ErrNotExist) {
		return nil, result.Err
	}
	return store, nil
}

func (c *cli) save(store *settings.Store) error {
	result := store.Save(c.persistOptions()...)
	if result.Err != nil {
		return result.Err
	}
	if c.v.GetBool("verbose") {
		fmt.Fprintln(c.stderr, "saved", result.Path)
	}
	return nil
}
