package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	pipeline.Options
	output  string
	noCache bool
}

// renderCommand creates the command printing the dashboard of one node.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [node]",
		Short: "Render the dashboard of a node as JSON",
		Long: `Render the Grafana dashboard of a munin node as JSON.

Without a node, the dashboard lists the indexed nodes. A node that is not in
the directory yields a placeholder dashboard explaining the missing node.`,
		Example: `  muninboard render db1.example.com
  muninboard render db1 --from 1w --line 2 -o db1.json
  muninboard render > overview.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Node = args[0]
			}
			return c.runRender(cmd, opts)
		},
	}

	defaults := c.defaultOptions()
	cmd.Flags().StringVar(&opts.Key, "key", "", "metric key of the node (default from the directory)")
	cmd.Flags().StringVar(&opts.Timespan, "from", defaults.Timespan, "time span shown by the dashboard, e.g. 2d or 1w")
	cmd.Flags().IntVar(&opts.LineWidth, "line", defaults.LineWidth, "graph line width")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "look the node up again instead of using the cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the directory lookup cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the dashboard to a file instead of stdout")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()

	s, err := c.newSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	// Flags left at their zero value take the configured defaults.
	defaults := c.defaultOptions()
	if !cmd.Flags().Changed("from") {
		opts.Timespan = defaults.Timespan
	}
	if !cmd.Flags().Changed("line") {
		opts.LineWidth = defaults.LineWidth
	}

	var spin io.Writer
	if opts.output != "" && !c.verbose {
		spin = os.Stderr
	}

	var result *pipeline.Result
	err = withSpinner(spin, "Building dashboard", func() error {
		var err error
		result, err = s.runner.Execute(ctx, opts.Options)
		return err
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.Dashboard, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	data = append(data, '\n')

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess("Dashboard %q", result.Dashboard.Title)
	printBuildStats(result)
	printFile(opts.output)
	return nil
}
