package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/rollbook/pkg/service"
	"github.com/ssargent/rollbook/pkg/storage"
)

const (
	confirmYes     = "y"
	confirmYesLong = "yes"
)

// dispatch runs a command against the roster from the command context.
// When only the save failed the affected record is still printed.
func dispatch(cmd *cobra.Command, c service.Command) (*service.Result, error) {
	roster, err := rosterFrom(cmd)
	if err != nil {
		return nil, err
	}

	res, err := roster.Dispatch(cmd.Context(), c)
	if err != nil && errors.Is(err, storage.ErrStorageUnavailable) && res != nil {
		cmd.PrintErrf("Warning: the change was applied but could not be saved\n")
	}
	return res, err
}

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <roll> <name> <marks>",
		Short: "Add a student record",
		Long: `Add a student record. The roll number must be unique.

A name holding a comma or a double quote is written quoted and only the
quoted decoder reads it back; select it with --decoder quoted or
storage.decoder: quoted in the config file.

Examples:
  rollbook add 101 "Alice" 87.5
  rollbook add 102 "Smith, John" 64 --decoder quoted`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := dispatch(cmd, service.Command{
				Op: service.OpAdd, Roll: args[0], Name: args[1], Marks: args[2],
			})
			if err != nil {
				return fmt.Errorf("failed to add student: %w", err)
			}

			if opts.Format == formatJSON {
				return outputRecord(cmd.OutOrStdout(), opts.Format, *res.Record)
			}
			if !opts.Quiet {
				cmd.Printf("Student added successfully! %s\n", res.Record)
			}
			return nil
		},
	}
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <roll>",
		Short: "Show a student by roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := dispatch(cmd, service.Command{Op: service.OpSearch, Roll: args[0]})
			if err != nil {
				return fmt.Errorf("failed to get student: %w", err)
			}
			return outputRecord(cmd.OutOrStdout(), opts.Format, *res.Record)
		},
	}
}

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update <roll> <name> <marks>",
		Short: "Replace a student's name and marks",
		Long: `Replace the name and marks of the student with the given roll number.
The roll number itself never changes.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := dispatch(cmd, service.Command{
				Op: service.OpUpdate, Roll: args[0], Name: args[1], Marks: args[2],
			})
			if err != nil {
				return fmt.Errorf("failed to update student: %w", err)
			}

			if opts.Format == formatJSON {
				return outputRecord(cmd.OutOrStdout(), opts.Format, *res.Record)
			}
			if !opts.Quiet {
				cmd.Printf("Record updated. %s\n", res.Record)
			}
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <roll>",
		Short: "Delete a student by roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := rosterFrom(cmd)
			if err != nil {
				return err
			}

			// look the record up first so the prompt can name it
			found, err := roster.Dispatch(cmd.Context(), service.Command{Op: service.OpSearch, Roll: args[0]})
			if err != nil {
				return fmt.Errorf("failed to delete student: %w", err)
			}

			if !opts.Yes {
				ok, err := confirm(cmd.OutOrStdout(), bufio.NewReader(cmd.InOrStdin()),
					fmt.Sprintf("Are you sure you want to delete student %d (%s)? (y/N): ",
						found.Record.Roll, found.Record.Name))
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("Deletion cancelled")
					return nil
				}
			}

			res, err := dispatch(cmd, service.Command{Op: service.OpDelete, Roll: args[0]})
			if err != nil {
				return fmt.Errorf("failed to delete student: %w", err)
			}
			if !opts.Quiet {
				cmd.Printf("Record deleted. %s\n", res.Record)
			}
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "view"},
		Short:   "List all students in insertion order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := dispatch(cmd, service.Command{Op: service.OpList})
			if err != nil {
				return fmt.Errorf("failed to list students: %w", err)
			}
			return outputRecords(cmd.OutOrStdout(), opts.Format, res.Records)
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total students, average marks and the top scorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := dispatch(cmd, service.Command{Op: service.OpStats})
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}
			return outputStats(cmd.OutOrStdout(), opts.Format, *res.Stats)
		},
	}
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(w io.Writer, in *bufio.Reader, question string) (bool, error) {
	fmt.Fprint(w, question)
	answer, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == confirmYes || answer == confirmYesLong, nil
}
