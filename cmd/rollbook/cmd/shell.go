package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/record"
	"github.com/ssargent/rollbook/pkg/service"
	"github.com/ssargent/rollbook/pkg/storage"
	"github.com/ssargent/rollbook/pkg/store"
)

const shellMenu = `
--- Student Record Management ---
1. Add Student
2. View Students
3. Search Student
4. Update Student
5. Delete Student
6. Refresh
7. Statistics
0. Exit
`

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu for managing student records",
		Long: `Start an interactive console menu. Choices may be given by number or
by name (add, view, search, update, delete, refresh, stats, exit).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := rosterFrom(cmd)
			if err != nil {
				return err
			}

			sh := &shell{
				roster: roster,
				in:     bufio.NewReader(cmd.InOrStdin()),
				out:    cmd.OutOrStdout(),
				yes:    opts.Yes,
			}
			return sh.run(cmd.Context())
		},
	}
}

// shell is the console front end; every request goes through Dispatch
type shell struct {
	roster *service.Roster
	in     *bufio.Reader
	out    io.Writer
	yes    bool
}

func (s *shell) run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, shellMenu)
		choice, err := s.prompt("Enter choice: ")
		if err != nil {
			return s.exit(err)
		}

		switch strings.ToLower(choice) {
		case "1", "add":
			err = s.add(ctx)
		case "2", "view", "list":
			err = s.view(ctx)
		case "3", "search":
			err = s.search(ctx)
		case "4", "update":
			err = s.update(ctx)
		case "5", "delete":
			err = s.delete(ctx)
		case "6", "refresh":
			err = s.refresh(ctx)
		case "7", "stats":
			err = s.stats(ctx)
		case "0", "exit", "quit":
			return s.exit(io.EOF)
		default:
			fmt.Fprintln(s.out, "Invalid choice!")
			continue
		}

		if errors.Is(err, io.EOF) {
			return s.exit(err)
		}
		if err != nil {
			fmt.Fprintln(s.out, describeError(err))
		}
	}
}

func (s *shell) exit(err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(s.out, "Exiting Program. Goodbye!")
	return nil
}

// prompt prints label and reads one trimmed line. A final line without a
// newline is returned; io.EOF only comes back once input is exhausted.
func (s *shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *shell) add(ctx context.Context) error {
	roll, err := s.prompt("Enter Roll Number: ")
	if err != nil {
		return err
	}
	name, err := s.prompt("Enter Name: ")
	if err != nil {
		return err
	}
	marks, err := s.prompt("Enter Marks: ")
	if err != nil {
		return err
	}

	if _, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpAdd, Roll: roll, Name: name, Marks: marks}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Student added successfully!")
	return nil
}

func (s *shell) view(ctx context.Context) error {
	res, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpList})
	if err != nil {
		return err
	}
	s.printRecords(res.Records)
	return nil
}

func (s *shell) search(ctx context.Context) error {
	roll, err := s.prompt("Enter Roll Number to Search: ")
	if err != nil {
		return err
	}
	res, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpSearch, Roll: roll})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, res.Record)
	return nil
}

func (s *shell) update(ctx context.Context) error {
	roll, err := s.prompt("Enter Roll Number to Update: ")
	if err != nil {
		return err
	}
	// report a missing student before asking for the new values
	if _, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpSearch, Roll: roll}); err != nil {
		return err
	}

	name, err := s.prompt("Enter new name: ")
	if err != nil {
		return err
	}
	marks, err := s.prompt("Enter new marks: ")
	if err != nil {
		return err
	}

	if _, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpUpdate, Roll: roll, Name: name, Marks: marks}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Record updated.")
	return nil
}

func (s *shell) delete(ctx context.Context) error {
	roll, err := s.prompt("Enter Roll Number to Delete: ")
	if err != nil {
		return err
	}
	found, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpSearch, Roll: roll})
	if err != nil {
		return err
	}

	if !s.yes {
		ok, err := confirm(s.out, s.in, fmt.Sprintf("Delete %s? (y/N): ", found.Record))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, "Deletion cancelled")
			return nil
		}
	}

	if _, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpDelete, Roll: roll}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Record deleted.")
	return nil
}

func (s *shell) refresh(ctx context.Context) error {
	res, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpRefresh})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Reloaded %d records from %s\n", len(res.Records), s.roster.Backend().Describe())
	for _, skipped := range res.Load.Skipped {
		fmt.Fprintf(s.out, "Skipped %s\n", skipped)
	}
	return nil
}

func (s *shell) stats(ctx context.Context) error {
	res, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpStats})
	if err != nil {
		return err
	}
	return outputStats(s.out, formatTable, *res.Stats)
}

func (s *shell) printRecords(recs []record.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(s.out, "No records found.")
		return
	}
	fmt.Fprintln(s.out, "\n--- Student Records ---")
	for _, rec := range recs {
		fmt.Fprintln(s.out, rec)
	}
}

// describeError turns a dispatch error into a message for the console
func describeError(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Student not found."
	case errors.Is(err, store.ErrDuplicateKey):
		return "A student with that roll number already exists."
	case errors.Is(err, record.ErrInvalidInput):
		return fmt.Sprintf("Invalid input: %v", err)
	case errors.Is(err, storage.ErrStorageUnavailable):
		return fmt.Sprintf("Warning: the change was applied but could not be saved: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
