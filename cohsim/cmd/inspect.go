package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cohsim/datarecording"
	"github.com/sarchlab/cohsim/mem/trace"
)

type inspectOptions struct {
	limit    int
	offset   int
	rejected bool
	events   bool
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	inspectCmd := &cobra.Command{
		Use:   "inspect <db.sqlite3>",
		Short: "List the accesses recorded by run --record-db.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			return opts.inspect(ctx, args[0], cmd.OutOrStdout())
		},
	}

	flags := inspectCmd.Flags()
	flags.IntVar(&opts.limit, "limit", 20, "number of accesses to list, 0 for all")
	flags.IntVar(&opts.offset, "offset", 0, "number of accesses to skip")
	flags.BoolVar(&opts.rejected, "rejected", false, "only list rejected accesses")
	flags.BoolVar(&opts.events, "events", false, "list the timed operations of each access")

	return inspectCmd
}

func (o *inspectOptions) inspect(
	ctx context.Context,
	dbFile string,
	out io.Writer,
) error {
	if _, err := os.Stat(dbFile); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(dbFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(trace.AccessTable, trace.AccessEntry{})
	reader.MapTable(trace.EventTable, trace.EventEntry{})

	params := datarecording.QueryParams{
		Limit:   o.limit,
		Offset:  o.offset,
		OrderBy: "rowid",
	}

	if o.rejected {
		params.Where = "Status = ?"
		params.Args = []any{"rejected"}
	}

	accesses, total, err := reader.Query(ctx, trace.AccessTable, params)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCHIP\tCORE\tADDRESS\tBYTES\tSTATUS\tPAGES\tL2\tL3\tTOTAL")

	for _, a := range accesses {
		entry := a.(*trace.AccessEntry)

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t0x%x\t%d\t%s\t%s\t%s\t%s\t%dns\n",
			entry.ID, entry.Kind, entry.ChipID, entry.CoreID, entry.Address,
			entry.ByteSize, entry.Status, entry.Pages, entry.L2, entry.L3,
			entry.TotalNS)

		if o.events {
			err := o.printEvents(ctx, reader, w, entry.ID)
			if err != nil {
				return err
			}
		}
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%d of %d accesses\n", len(accesses), total)

	return err
}

func (o *inspectOptions) printEvents(
	ctx context.Context,
	reader datarecording.DataReader,
	w io.Writer,
	accessID string,
) error {
	events, _, err := reader.Query(ctx, trace.EventTable,
		datarecording.QueryParams{
			Where:   "AccessID = ?",
			Args:    []any{accessID},
			OrderBy: "rowid",
		})
	if err != nil {
		return err
	}

	for _, e := range events {
		event := e.(*trace.EventEntry)
		fmt.Fprintf(w, "\t%s\t%dns\tx%d\t\t\t\t\t\t\t%dns\n",
			event.Op, event.CostNS, event.Count, event.TotalNS)
	}

	return nil
}
