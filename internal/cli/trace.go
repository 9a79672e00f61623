package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	After    int64
	Limit    int
	Kind     string // optional - filter to one action kind
}

// TraceEvent is one applied action.
type TraceEvent struct {
	Seq     int64           `json:"seq"`
	Kind    action.Kind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// TraceStats counts the events in a trace.
type TraceStats struct {
	Total   int                 `json:"total"`
	ByKind  map[action.Kind]int `json:"by_kind"`
	LastSeq int64               `json:"last_seq"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the actions a node applied",
		Long: `Print a node's action log in the order the actions were applied.

Every state change a node makes is an action; the log is what the node
replays on restart. Use --after and --limit to page through it.

Example:
  nucleus trace --db ./alice.db
  nucleus trace --db ./alice.db --kind commit --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only actions with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of actions read (0 = all)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one action kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if opts.Kind != "" {
		if !action.Kind(opts.Kind).Known() {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid --kind %q", opts.Kind))
		}
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Actions().Read(cmd.Context(), opts.After, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read action log", err)
	}
	result := buildTrace(records, action.Kind(opts.Kind))
	out.VerboseLog("read %d actions after seq %d", len(records), opts.After)

	return out.Success(result, func(w io.Writer) {
		printTrace(w, result)
	})
}

func buildTrace(records []store.ActionRecord, kind action.Kind) TraceResult {
	result := TraceResult{
		Timeline: []TraceEvent{},
		Stats:    TraceStats{ByKind: map[action.Kind]int{}},
	}
	for _, r := range records {
		if kind != "" && r.Kind != kind {
			continue
		}
		result.Timeline = append(result.Timeline, TraceEvent{Seq: r.Seq, Kind: r.Kind, Payload: r.Payload})
		result.Stats.Total++
		result.Stats.ByKind[r.Kind]++
		result.Stats.LastSeq = r.Seq
	}
	return result
}

func printTrace(w io.Writer, result TraceResult) {
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No actions found.")
		return
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "[%d] %s %s\n", ev.Seq, ev.Kind, ev.Payload)
	}

	kinds := make([]string, 0, len(result.Stats.ByKind))
	for k := range result.Stats.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "\n%d actions, last seq %d\n", result.Stats.Total, result.Stats.LastSeq)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-32s %d\n", k, result.Stats.ByKind[action.Kind(k)])
	}
}
