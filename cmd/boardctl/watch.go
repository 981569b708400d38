package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"collab-board/internal/domain"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <boardId>",
		Short: "Follow changes to a board until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			boardID := s.store.CurrentBoard().ID
			events, err := s.client.Subscribe(ctx, boardID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %s\n", boardID)

			logged := make(chan domain.BoardEvent)
			go func() {
				defer close(logged)
				for ev := range events {
					fmt.Fprintf(out, "%s %s by %s\n", ev.OccurredAt.Format("15:04:05"), ev.Type, ev.ActorID)
					select {
					case logged <- ev:
					case <-ctx.Done():
						return
					}
				}
			}()

			err = s.store.Watch(ctx, logged)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			if board := s.store.CurrentBoard(); board != nil {
				printBoard(out, *board, s.store.VisibleColumns())
			} else {
				fmt.Fprintln(out, "board is no longer available")
			}
			return err
		},
	}
}
