package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List your labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.store.LoadLabels(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR")
			for _, l := range s.store.Labels() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, l.Color)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name> <color>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := s.store.CreateLabel(ctx, args[0], args[1])
			label, err := settle(ctx, p, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created label %s\n", label.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <labelId>",
		Short: "Delete a label and remove it from your cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labelID, err := parseID("label id", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := s.store.LoadLabels(ctx); err != nil {
				return err
			}
			p, err := s.store.DeleteLabel(ctx, labelID)
			if _, err := settle(ctx, p, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted label %s\n", labelID)
			return nil
		},
	})

	return cmd
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the other users you can share with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.store.LoadUsers(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, u := range s.store.Users() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "register <name> [email]",
		Short: "Register your display name so others can find you",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			email := ""
			if len(args) == 2 {
				email = args[1]
			}
			user, err := s.client.UpsertProfile(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s as %s\n", user.ID, user.Name)
			return nil
		},
	})

	return cmd
}
