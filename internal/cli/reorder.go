package cli

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moviegraph/pkg/reorder"
)

// reorderCommand creates the reorder command. It reads a square matrix,
// orders its rows and columns by optimal leaf order and writes the
// permuted matrix.
func (c *CLI) reorderCommand() *cobra.Command {
	var output string
	var showPerm bool

	cmd := &cobra.Command{
		Use:   "reorder [matrix.json]",
		Short: "Reorder a square matrix so similar rows sit together",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], c.cfg.Server.MaxBodyBytes)
			if err != nil {
				return err
			}
			m, err := reorder.DecodeMatrix(bytes.NewReader(data))
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			ordered, perm, err := reorder.Reorder(m)
			if err != nil {
				return err
			}
			prog.done("ordered matrix", "size", len(m))
			if showPerm {
				c.Logger.Info("permutation", "order", perm)
			}

			out, err := json.Marshal(ordered)
			if err != nil {
				return err
			}
			return c.writeOutput(output, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&showPerm, "perm", false, "log the computed row order")

	return cmd
}
