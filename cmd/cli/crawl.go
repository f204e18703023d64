package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/waftester/mutaprobe/pkg/crawler"
	"github.com/waftester/mutaprobe/pkg/ui"
)

func newCrawlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>...",
		Short: "Discover resources by replacing words with related words",
		Long: `Expand the filename and every query parameter value of each URL into
related words, request the variants and print the ones that reach new
content. Responses that match the site's not-found page or the original
response are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrawl(cmd, args)
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func (a *app) runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig(a.v)
	if err != nil {
		return err
	}
	seeds, err := seedsFromArgs(cmd, args)
	if err != nil {
		return err
	}
	sender, err := newSender(a.v, cfg)
	if err != nil {
		return err
	}
	exp, err := newExpander(a.v)
	if err != nil {
		return err
	}
	c, err := crawler.NewCrawler(cfg, sender, exp,
		crawler.WithLogger(a.logger),
		crawler.WithProbeOptions(a.probeOptions()...))
	if err != nil {
		return err
	}

	jsonOut := a.v.GetBool(flagJSON)
	var errs []error
	for _, seed := range seeds {
		res, err := c.Crawl(cmd.Context(), seed)
		if err != nil {
			a.logger.Error("crawl failed", slog.String("url", seed.String()), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", seed.String(), err))
			if cmd.Context().Err() != nil {
				break
			}
			continue
		}
		ui.PrintConfigLine("target", seed.String())
		ui.PrintStats(res.Stats)
		if !jsonOut {
			for _, u := range res.URLs() {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			for _, l := range res.Links {
				a.logger.Debug("linked from discovered resource", slog.String("url", l))
			}
		}
	}

	repo, stored := a.repository(cmd.OutOrStdout())
	if _, err := c.End(repo); err != nil {
		return err
	}
	ui.PrintFindings(stored())
	return errors.Join(errs...)
}
