package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/teatak/smt/translator"
)

func newDecodeCmd() *cobra.Command {
	var (
		input   string
		output  string
		nbest   int
		workers int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Translate one sentence per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if nbest > 0 {
				cfg.Search.NBest = nbest
			}
			if workers > 0 {
				cfg.Translate.Workers = workers
			}

			lines, err := readLines(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			tr, err := translator.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			results, err := tr.TranslateBatch(cmd.Context(), lines, cfg.Translate.Workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			w := bufio.NewWriter(out)
			for i, res := range results {
				if cfg.Search.NBest > 1 {
					writeNBest(w, i+1, res)
					continue
				}
				fmt.Fprintln(w, res.Translation)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&nbest, "nbest", "n", 0, "print the n best translations per sentence")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "sentences decoded in parallel")
	return cmd
}

func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// writeNBest prints the n-best list of sentence i as a table. A sentence that failed
// gets a single row with the policy's output.
func writeNBest(w io.Writer, i int, res *translator.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Sentence", "Rank", "Score", "Translation"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	sent := strconv.Itoa(i)
	if len(res.NBest) == 0 {
		table.Append([]string{sent, "-", "-", res.Translation})
	}
	for rank, d := range res.NBest {
		table.Append([]string{sent, strconv.Itoa(rank + 1), strconv.FormatFloat(d.Score, 'f', 4, 64), translator.Detokenize(d.Words)})
	}
	table.Render()
}
