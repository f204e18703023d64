package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waftester/mutaprobe/pkg/finding"
	"github.com/waftester/mutaprobe/pkg/jsonutil"
	"github.com/waftester/mutaprobe/pkg/ui"
)

func newReportCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "report <file>...",
		Short: "Print findings saved by --json runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recs []finding.Record
			for _, path := range args {
				got, err := readRecords(path)
				if err != nil {
					return err
				}
				for _, rec := range got {
					if category == "" || rec.Category == category {
						recs = append(recs, rec)
					}
				}
			}

			out := cmd.OutOrStdout()
			if a.v.GetBool(flagJSON) {
				enc := jsonutil.NewStreamEncoder(out)
				for _, rec := range recs {
					if err := enc.Encode(rec); err != nil {
						return err
					}
				}
				return nil
			}

			findings := make([]finding.Finding, 0, len(recs))
			for _, rec := range recs {
				findings = append(findings, rec.Finding)
			}
			for _, f := range ui.BySeverity(findings) {
				fmt.Fprintln(out, ui.FindingLine(f))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only print findings of this category")
	return cmd
}

func readRecords(path string) ([]finding.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := finding.ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
