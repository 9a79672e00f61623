package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/ir"
)

// EAVOptions holds flags for the eav command.
type EAVOptions struct {
	*RootOptions
	Database  string
	Entity    string
	Attribute string
	Value     string
}

// NewEAVCommand creates the eav command.
func NewEAVCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EAVOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eav",
		Short: "Query entity-attribute-value metadata",
		Long: `Query the metadata triples a stopped node stored in its SQLite database.
Every filter is optional; with none, all triples are listed.

Example:
  nucleus eav --db ./alice.db --attribute crud-status
  nucleus eav --db ./alice.db --entity <address> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryEAV(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "only triples with this entity")
	cmd.Flags().StringVar(&opts.Attribute, "attribute", "", "only triples with this attribute")
	cmd.Flags().StringVar(&opts.Value, "value", "", "only triples with this value")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func (o *EAVOptions) query() eav.Query {
	var q eav.Query
	if o.Entity != "" {
		q = q.WithEntity(ir.Address(o.Entity))
	}
	if o.Attribute != "" {
		q = q.WithAttribute(o.Attribute)
	}
	if o.Value != "" {
		q = q.WithValue(ir.Address(o.Value))
	}
	return q
}

func queryEAV(opts *EAVOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	set, err := st.EAV().Fetch(cmd.Context(), opts.query())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to query triples", err)
	}
	triples := set.Sorted()
	out.VerboseLog("%d triples match", len(triples))

	return out.Success(triples, func(w io.Writer) {
		if len(triples) == 0 {
			fmt.Fprintln(w, "No triples found.")
			return
		}
		for _, t := range triples {
			fmt.Fprintf(w, "%s  %s  %s\n", t.Entity, t.Attribute, t.Value)
		}
	})
}
