package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	settings "github.com/goliatone/go-settings"
)

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the resolved value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			value, err := store.Get(args[0])
			if err != nil {
				return err
			}
			return writeValue(c.stdout, value)
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a key and save the store",
		Long:  "Set a key and save the store. VALUE is parsed as YAML, so numbers, booleans, lists and maps keep their type; anything else is stored as a string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			if err := store.Set(args[0], parseValue(args[1])); err != nil {
				return err
			}
			return c.save(store)
		},
	}
}

func (c *cli) unsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a key from the store and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			return c.save(store)
		},
	}
}

func (c *cli) keysCmd() *cobra.Command {
	var own, all bool
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List keys, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			keys := store.Keys(settings.IncludeNested(!own), settings.IncludeDefaultsOfDefaults(all)).ToSlice()
			slices.Sort(keys)
			for _, key := range keys {
				fmt.Fprintln(c.stdout, key)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&own, "own", false, "only keys set on this store")
	cmd.Flags().BoolVar(&all, "all", false, "include the whole defaults chain")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every resolved key and value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			snapshot := store.Snapshot()
			switch format {
			case "json":
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			case "yaml":
				enc := yaml.NewEncoder(c.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(snapshot); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				fmt.Fprintln(c.stdout, store.String())
				return nil
			}
			return fmt.Errorf("unknown format %q (want json, yaml or text)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or text")
	return cmd
}

func (c *cli) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.open()
			if err != nil {
				return err
			}
			path, err := store.Path(c.persistOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, path)
			return nil
		},
	}
}

// parseValue decodes raw as a YAML scalar or document, falling back to the
// raw string.
func parseValue(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	return value
}

func writeValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
