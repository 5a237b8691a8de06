package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/pkg/pipeline"
)

// nodesOpts holds the flags of the nodes command.
type nodesOpts struct {
	json    bool
	pick    bool
	noCache bool
}

// nodesCommand creates the command listing indexed nodes.
func (c *CLI) nodesCommand() *cobra.Command {
	opts := nodesOpts{}

	cmd := &cobra.Command{
		Use:   "nodes [pattern]",
		Short: "List indexed nodes",
		Long: `List the munin nodes held in the directory whose host matches a glob
pattern ('*' and '?' wildcards, case-insensitive).

With --pick, a node is chosen interactively and its dashboard is printed.`,
		Example: `  muninboard nodes
  muninboard nodes 'db*' --json
  muninboard nodes --pick > dashboard.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := pipeline.DefaultPattern
			if len(args) == 1 {
				pattern = args[0]
			}
			return c.runNodes(cmd, pattern, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the listing as JSON")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick a node interactively and print its dashboard")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the directory lookup cache")
	cmd.MarkFlagsMutuallyExclusive("json", "pick")

	return cmd
}

func (c *CLI) runNodes(cmd *cobra.Command, pattern string, opts nodesOpts) error {
	ctx := cmd.Context()

	s, err := c.newSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	nodes, err := s.runner.Nodes(ctx, pattern)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if nodes == nil {
			return enc.Encode([]struct{}{})
		}
		return enc.Encode(nodes)
	}

	if len(nodes) == 0 {
		printWarning("No nodes match %q", pattern)
		return nil
	}

	if !opts.pick {
		fmt.Fprintln(ui, renderNodeTable(nodes))
		printDetail("%d nodes", len(nodes))
		return nil
	}

	selected, err := pickNode(nodes)
	if err != nil {
		return err
	}
	if selected == nil {
		printInfo("No node selected")
		return nil
	}

	req := c.defaultOptions()
	req.Node = selected.Host
	req.Key = selected.Key
	result, err := s.runner.Execute(ctx, req)
	if err != nil {
		printError("Dashboard for %s failed", selected.Host)
		return err
	}
	data, err := json.MarshalIndent(result.Dashboard, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return err
}
