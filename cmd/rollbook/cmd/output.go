package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tidwall/pretty"

	"github.com/ssargent/rollbook/pkg/record"
	"github.com/ssargent/rollbook/pkg/store"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// outputRecord displays a single record
func outputRecord(w io.Writer, format string, rec record.Record) error {
	if format == formatJSON {
		return outputJSON(w, rec)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Roll Number:\t%d\n", rec.Roll)
	fmt.Fprintf(tw, "Name:\t%s\n", rec.Name)
	fmt.Fprintf(tw, "Marks:\t%s\n", record.FormatMarks(rec.Marks))
	return tw.Flush()
}

// outputRecords displays records in store order
func outputRecords(w io.Writer, format string, recs []record.Record) error {
	if format == formatJSON {
		if recs == nil {
			recs = []record.Record{}
		}
		return outputJSON(w, recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLL\tNAME\tMARKS")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", rec.Roll, rec.Name, record.FormatMarks(rec.Marks))
	}
	return tw.Flush()
}

// outputStats displays the dashboard summary
func outputStats(w io.Writer, format string, st store.Stats) error {
	if format == formatJSON {
		return outputJSON(w, st)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total students:\t%d\n", st.Total)
	fmt.Fprintf(tw, "Average marks:\t%.2f\n", st.Average)
	if st.HasTop {
		fmt.Fprintf(tw, "Top scorer:\t%s (%d) %s\n", st.Top.Name, st.Top.Roll, record.FormatMarks(st.Top.Marks))
	} else {
		fmt.Fprintf(tw, "Top scorer:\t-\n")
	}
	return tw.Flush()
}

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}
