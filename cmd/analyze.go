package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/perception/internal/domain/report"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	var (
		style string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [flags] <player name...>",
		Short: "Generate one report and print it as JSON",
		Example: `  perception analyze Patrick Mahomes
  perception analyze --style table "Joe Burrow"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.analyze(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), report.StyleName(style), raw)
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "report style: character, narrative, table or themes (default from config)")
	cmd.Flags().BoolVar(&raw, "raw", false, "include the unparsed model output")
	return cmd
}

func (c *cli) analyze(ctx context.Context, out io.Writer, subject string, style report.StyleName, raw bool) error {
	svc, err := buildService(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	rep, err := svc.Analyze(ctx, subject, style)
	if err != nil {
		return err
	}
	if !raw {
		rep.Raw = ""
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
