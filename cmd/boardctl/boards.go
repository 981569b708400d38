package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"collab-board/internal/domain"
)

func boardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List the boards you own or that are shared with you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.store.LoadBoards(cmd.Context()); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tOWNER\tCOLUMNS\tCARDS")
			for _, b := range s.store.Boards() {
				owner := "shared"
				if b.UserID == s.actor {
					owner = "me"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.Title, owner, len(b.Columns), b.CardCount())
			}
			return w.Flush()
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <boardId>",
		Short: "Show the columns and cards of a board you can see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID("board id", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.store.OpenBoard(cmd.Context(), boardID); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), *s.store.CurrentBoard(), s.store.VisibleColumns())
			return nil
		},
	}
}

func printBoard(out io.Writer, board domain.Board, columns []domain.Column) {
	fmt.Fprintf(out, "%s (%s)\n", board.Title, board.ID)
	if board.Description != "" {
		fmt.Fprintf(out, "  %s\n", board.Description)
	}
	for _, col := range columns {
		fmt.Fprintf(out, "\n[%d] %s %s (%s)\n", col.Order, col.Title, col.Color, col.ID)
		if len(col.Cards) == 0 {
			fmt.Fprintln(out, "    (empty)")
		}
		for _, card := range col.Cards {
			line := fmt.Sprintf("    %d. %s [%s]", card.Order, card.Title, card.Priority)
			if card.DueDate != nil {
				line += " due " + card.DueDate.Format("2006-01-02")
			}
			if len(card.Labels) > 0 {
				line += " labels=" + strconv.Itoa(len(card.Labels))
			}
			fmt.Fprintf(out, "%s (%s)\n", line, card.ID)
		}
	}
}

func createBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-board <title>",
		Short: "Create a board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := s.store.CreateBoard(ctx, strings.Join(args, " "), description)
			board, err := settle(ctx, p, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created board %s\n", board.ID)
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "Board description")

	return cmd
}

func moveBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-board <boardId> <index>",
		Short: "Move a board to a position in your board list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID("board id", args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := s.store.LoadBoards(ctx); err != nil {
				return err
			}
			p, err := s.store.MoveBoard(ctx, boardID, index)
			if _, err := settle(ctx, p, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved board %s to %d\n", boardID, index)
			return nil
		},
	}
}
