package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/waftester/mutaprobe/pkg/openredirect"
	"github.com/waftester/mutaprobe/pkg/ui"
)

func newRedirectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redirect <url>...",
		Short: "Audit query parameters for global redirects",
		Long: `Replace every query parameter of each URL with the test URLs, send the
mutants without following redirects and report the parameters whose
responses redirect to a test URL.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRedirect(cmd, args)
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func (a *app) runRedirect(cmd *cobra.Command, args []string) error {
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
	scanner, err := openredirect.NewScanner(cfg, sender,
		openredirect.WithLogger(a.logger),
		openredirect.WithProbeOptions(a.probeOptions()...))
	if err != nil {
		return err
	}

	var errs []error
	for _, seed := range seeds {
		res, err := scanner.Audit(cmd.Context(), seed)
		if err != nil {
			a.logger.Error("redirect audit failed", slog.String("url", seed.String()), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", seed.String(), err))
			if cmd.Context().Err() != nil {
				break
			}
			continue
		}
		ui.PrintConfigLine("target", seed.String())
		ui.PrintStats(res.Stats)
	}

	repo, stored := a.repository(cmd.OutOrStdout())
	reported, err := scanner.End(repo)
	if err != nil {
		return err
	}
	ui.PrintFindings(stored())
	if len(reported) == 0 {
		ui.PrintSuccess("no redirects found")
	}
	return errors.Join(errs...)
}
