package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teatak/smt/dictionary"
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage phrase and rule tables",
	}
	cmd.AddCommand(newTableImportCmd(), newTablePruneCmd())
	return cmd
}

func newTableImportCmd() *cobra.Command {
	var (
		text      string
		db        string
		numScores int
		rules     bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a text phrase or rule table into a SQLite store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := dictionary.NewTable(numScores)
			var err error
			if rules {
				err = t.LoadRules(text)
			} else {
				err = t.Load(text)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", text, err)
			}
			store, err := dictionary.OpenSQLite(db)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.Import(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s\n", n, db)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text table (src ||| tgt ||| scores)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database to create or extend")
	cmd.Flags().IntVar(&numScores, "num-features", 1, "scores per entry")
	cmd.Flags().BoolVar(&rules, "rules", false, "the text table holds hierarchical rules")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func newTablePruneCmd() *cobra.Command {
	var (
		text    string
		output  string
		limit   int
		weights []float64
		rules   bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Keep the best translations of every source phrase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := dictionary.NewTable(len(weights))
			var err error
			if rules {
				err = t.LoadRules(text)
			} else {
				err = t.Load(text)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", text, err)
			}
			removed, err := t.Prune(limit, weights)
			if err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := t.Write(f, rules); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d of %d entries\n", removed, t.Len()+removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text table to prune")
	cmd.Flags().StringVarP(&output, "output", "o", "", "pruned table")
	cmd.Flags().IntVar(&limit, "limit", 20, "entries kept per source phrase")
	cmd.Flags().Float64SliceVar(&weights, "weights", []float64{1}, "score weights used for ranking; their count is the table's score count")
	cmd.Flags().BoolVar(&rules, "rules", false, "the text table holds hierarchical rules")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
