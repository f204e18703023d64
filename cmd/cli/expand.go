package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waftester/mutaprobe/pkg/jsonutil"
)

type expansion struct {
	Word       string   `json:"word"`
	Candidates []string `json:"candidates"`
}

func newExpandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <word>...",
		Short: "Print the related words tried for each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := newExpander(a.v)
			if err != nil {
				return err
			}
			limit := a.v.GetInt(flagMaxCandidates)
			out := cmd.OutOrStdout()
			enc := jsonutil.NewStreamEncoder(out)
			for _, word := range args {
				cands := exp.Expand(word, limit)
				if a.v.GetBool(flagJSON) {
					if cands == nil {
						cands = []string{}
					}
					if err := enc.Encode(expansion{Word: word, Candidates: cands}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", word, strings.Join(cands, ", "))
			}
			return nil
		},
	}
}
