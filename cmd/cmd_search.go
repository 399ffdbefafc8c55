// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var searchOptions struct {
	partial bool
	limit   int
	explain bool
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search places by name",
	Example: `  geocoder search "Springfield, Illinois"
  geocoder search --partial --limit 5 "spring, usa"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.DB().Close()

		svc := newService(s)
		term := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if searchOptions.explain {
			expr, err := svc.Explain(cmd.Context(), term, searchOptions.partial)
			if err != nil {
				return err
			}

			if expr != nil {
				fmt.Fprintln(out, expr.String())
			}

			return nil
		}

		results, err := svc.Search(cmd.Context(), term, searchOptions.partial, searchOptions.limit)
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Fprintf(out, "%d\t%s\n", r.ID, r.Name)
		}

		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <id>",
	Short: "Show the details of a place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid place id %q", args[0])
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.DB().Close()

		detail, err := newService(s).Lookup(cmd.Context(), id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(detail)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count the rows of every gazetteer table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.DB().Close()

		c, err := s.Counts(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "countries        %12s\n", humanize.Comma(c.Countries))
		fmt.Fprintf(out, "admin1           %12s\n", humanize.Comma(c.Admin1))
		fmt.Fprintf(out, "admin2           %12s\n", humanize.Comma(c.Admin2))
		fmt.Fprintf(out, "localities       %12s\n", humanize.Comma(c.Localities))
		fmt.Fprintf(out, "alternate names  %12s\n", humanize.Comma(c.AlternateNames))

		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchOptions.partial, "partial", false, "match name prefixes")
	searchCmd.Flags().IntVar(&searchOptions.limit, "limit", 0, "maximum number of results (default search.defaultlimit)")
	searchCmd.Flags().BoolVar(&searchOptions.explain, "explain", false, "print the query predicate instead of running it")

	rootCmd.AddCommand(searchCmd, lookupCmd, statsCmd)
}
