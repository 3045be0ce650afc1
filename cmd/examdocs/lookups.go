package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var subjectsClassroom string

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects, optionally for one classroom",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, func(ctx context.Context, l lookups) ([]string, error) {
			if subjectsClassroom != "" {
				return l.SubjectsByClassroom(ctx, subjectsClassroom)
			}
			return l.Subjects(ctx)
		})
	},
}

var classroomsCmd = &cobra.Command{
	Use:   "classrooms",
	Short: "List classrooms with at least one assignment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, func(ctx context.Context, l lookups) ([]string, error) {
			return l.Classrooms(ctx)
		})
	},
}

func init() {
	subjectsCmd.Flags().StringVar(&subjectsClassroom, "classroom", "", "Only subjects sat in this classroom")
}

type lookups interface {
	Classrooms(ctx context.Context) ([]string, error)
	Subjects(ctx context.Context) ([]string, error)
	SubjectsByClassroom(ctx context.Context, classroom string) ([]string, error)
}

func runLookup(cmd *cobra.Command, list func(context.Context, lookups) ([]string, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, conn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	values, err := list(ctx, store)
	if err != nil {
		return err
	}
	return printLines(cmd.OutOrStdout(), values)
}

func printLines(w io.Writer, values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
