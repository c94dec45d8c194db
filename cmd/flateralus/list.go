package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/bracketbear/flateralus/animations"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in animations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCONTROLS\tDESCRIPTION")
			for _, id := range animations.IDs() {
				e, _ := animations.Lookup(id)
				m := e.Manifest
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", id, m.Name(), m.Len(), m.Description())
			}
			return tw.Flush()
		},
	}
}

func newManifestCmd(o *options) *cobra.Command {
	var values bool
	cmd := &cobra.Command{
		Use:   "manifest [id]",
		Short: "Print an animation's control manifest as YAML",
		Long: `Prints the control manifest of an animation in the format manifests are
loaded from. With --values, prints the effective control values instead:
manifest defaults overlaid with the config file's overrides.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := o.animationID(args)
			e, ok := animations.Lookup(id)
			if !ok {
				_, err := animations.New(id)
				return err
			}
			var doc any = e.Manifest
			if values {
				v, err := o.cfg.ControlValues(e.Manifest)
				if err != nil {
					return err
				}
				doc = v.Map()
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&values, "values", false, "print effective control values instead of the manifest")
	return cmd
}
