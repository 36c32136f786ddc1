package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/seitool/sei/internal/match"
	"github.com/seitool/sei/internal/rules"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules parsed from a filter file",
	Long: `Parse a filter list and print the resulting rules with their
metadata. With --expand, each rule's pattern variants are shown too.`,
	RunE: runRules,
}

var (
	rulesFilter string
	rulesExpand bool
)

func init() {
	rulesCmd.Flags().StringVarP(&rulesFilter, "filter", "f", "", "Path to the filter list file (required)")
	rulesCmd.Flags().BoolVarP(&rulesExpand, "expand", "x", false, "Show expanded pattern variants")
	rulesCmd.MarkFlagRequired("filter")
}

func runRules(cmd *cobra.Command, args []string) error {
	ruleList, err := rules.ParseFile(rulesFilter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INDEX\tACTION\tPATTERN\tLINE\tLABEL\tCOLOR\n")
	for i, r := range ruleList {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i, r.Action, r.Pattern, r.LineNo, r.Label, r.Color)
		if rulesExpand {
			for _, variant := range match.Expand(r.Pattern) {
				fmt.Fprintf(w, "\t\t  %s\t\t\t\n", variant)
			}
		}
	}
	return w.Flush()
}
