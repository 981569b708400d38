package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"collab-board/internal/domain"
	"collab-board/internal/store"
)

// openBoard starts a session with boardID as the current board
func openBoard(cmd *cobra.Command, rawID string) (*session, error) {
	boardID, err := parseID("board id", rawID)
	if err != nil {
		return nil, err
	}
	s, err := newSession(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.store.OpenBoard(cmd.Context(), boardID); err != nil {
		return nil, err
	}
	return s, nil
}

func addColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-column <boardId> <title>",
		Short: "Append a column to a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, _ := cmd.Flags().GetString("color")
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := s.store.CreateColumn(ctx, strings.Join(args[1:], " "), color)
			if err != nil {
				return err
			}
			column := p.Applied.Columns[len(p.Applied.Columns)-1]
			if _, err := settle(ctx, p, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created column %s\n", column.ID)
			return nil
		},
	}

	cmd.Flags().String("color", store.DefaultColumnColor, "Column color (#RGB or #RRGGBB)")

	return cmd
}

func addCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-card <boardId> <columnId> <title>",
		Short: "Append a card to a column",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseID("column id", args[1])
			if err != nil {
				return err
			}
			in, err := cardInputFromFlags(cmd, strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := s.store.CreateCard(ctx, columnID, in)
			if err != nil {
				return err
			}
			card := lastCard(p.Applied, columnID)
			if _, err := settle(ctx, p, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created card %s\n", card)
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "Card description")
	cmd.Flags().StringP("priority", "p", string(domain.PriorityMedium), "low, medium, high or urgent")
	cmd.Flags().StringSlice("label", nil, "Label id (repeatable)")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD or RFC3339")
	cmd.Flags().String("icon", "", "Card icon")

	return cmd
}

func cardInputFromFlags(cmd *cobra.Command, title string) (store.CardInput, error) {
	flags := cmd.Flags()
	description, _ := flags.GetString("description")
	priority, _ := flags.GetString("priority")
	rawLabels, _ := flags.GetStringSlice("label")
	rawDue, _ := flags.GetString("due")
	icon, _ := flags.GetString("icon")

	in := store.CardInput{
		Title:       title,
		Description: description,
		Priority:    domain.Priority(priority),
		Icon:        icon,
	}
	for _, raw := range rawLabels {
		id, err := parseID("label id", raw)
		if err != nil {
			return in, err
		}
		in.Labels = append(in.Labels, id)
	}
	if rawDue != "" {
		due, err := parseDue(rawDue)
		if err != nil {
			return in, err
		}
		in.DueDate = &due
	}
	return in, nil
}

func parseDue(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", raw)
	}
	return t, nil
}

func lastCard(board domain.Board, columnID uuid.UUID) uuid.UUID {
	i, ok := board.ColumnIndex(columnID)
	if !ok || len(board.Columns[i].Cards) == 0 {
		return uuid.Nil
	}
	cards := board.Columns[i].Cards
	return cards[len(cards)-1].ID
}

func moveCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-card <boardId> <cardId> <toColumnId> <index>",
		Short: "Move a card to a position in a column",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID("card id", args[1])
			if err != nil {
				return err
			}
			toColumnID, err := parseID("column id", args[2])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[3])
			}
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}

			fromColumnID, err := columnOfCard(s.store.CurrentBoard(), cardID)
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd, func(ctx context.Context) (*store.Pending[domain.Board], error) {
				return s.store.MoveCard(ctx, cardID, fromColumnID, toColumnID, index)
			}, "moved card %s", cardID)
		},
	}
}

func columnOfCard(board *domain.Board, cardID uuid.UUID) (uuid.UUID, error) {
	ci, _, ok := domain.LocateCard(board.Columns, cardID)
	if !ok {
		return uuid.Nil, fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}
	return board.Columns[ci].ID, nil
}

func moveColumnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-column <boardId> <columnId> <index>",
		Short: "Move a column to a position on its board",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseID("column id", args[1])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[2])
			}
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd, func(ctx context.Context) (*store.Pending[domain.Board], error) {
				return s.store.MoveColumn(ctx, columnID, index)
			}, "moved column %s", columnID)
		},
	}
}

// runMutation issues a board mutation, waits for the server and prints msg
func runMutation(ctx context.Context, cmd *cobra.Command, fn func(ctx context.Context) (*store.Pending[domain.Board], error), msg string, args ...interface{}) error {
	p, err := fn(ctx)
	if _, err := settle(ctx, p, err); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), msg+"\n", args...)
	return nil
}
