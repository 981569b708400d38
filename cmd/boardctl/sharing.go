package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"collab-board/internal/domain"
	"collab-board/internal/store"
)

func addRefFlags(cmd *cobra.Command) {
	cmd.Flags().String("level", string(domain.LevelBoard), "board, column or card")
	cmd.Flags().String("entity", "", "Column or card id; ignored for board level")
}

// refFromFlags builds the shared entity reference on boardID
func refFromFlags(cmd *cobra.Command, boardID uuid.UUID) (domain.EntityRef, error) {
	rawLevel, _ := cmd.Flags().GetString("level")
	rawEntity, _ := cmd.Flags().GetString("entity")

	level := domain.ShareLevel(rawLevel)
	if !level.Valid() {
		return domain.EntityRef{}, fmt.Errorf("invalid level %q", rawLevel)
	}
	ref := domain.EntityRef{Level: level, BoardID: boardID, ID: boardID}
	if level == domain.LevelBoard {
		return ref, nil
	}
	id, err := parseID("entity id", rawEntity)
	if err != nil {
		return ref, err
	}
	ref.ID = id
	return ref, nil
}

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share <boardId> <userId>",
		Short: "Share a board, column or card you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[1])
			if err != nil {
				return err
			}
			perm, _ := cmd.Flags().GetString("permission")
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			ref, err := refFromFlags(cmd, s.store.CurrentBoard().ID)
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd, func(ctx context.Context) (*store.Pending[domain.Board], error) {
				return s.store.Share(ctx, ref, userID, domain.SharePermission(perm))
			}, "shared %s %s with %s (%s)", ref.Level, ref.ID, userID, perm)
		},
	}

	addRefFlags(cmd)
	cmd.Flags().String("permission", string(domain.PermissionRead), "read or write")

	return cmd
}

func unshareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unshare <boardId> <userId>",
		Short: "Revoke a user's access to a board, column or card you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[1])
			if err != nil {
				return err
			}
			s, err := openBoard(cmd, args[0])
			if err != nil {
				return err
			}
			ref, err := refFromFlags(cmd, s.store.CurrentBoard().ID)
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd, func(ctx context.Context) (*store.Pending[domain.Board], error) {
				return s.store.Unshare(ctx, ref, userID)
			}, "unshared %s %s from %s", ref.Level, ref.ID, userID)
		},
	}

	addRefFlags(cmd)

	return cmd
}
