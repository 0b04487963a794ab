package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/models"
)

func (a *App) setlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setlist",
		Short: "Manage setlists",
	}
	cmd.AddCommand(
		a.setlistCreateCmd(),
		a.setlistAddCmd(),
		a.setlistMoveCmd(),
		a.setlistListCmd(),
		a.setlistDeleteCmd(),
	)
	return cmd
}

func (a *App) setlistCreateCmd() *cobra.Command {
	var setlist models.Setlist
	cmd := &cobra.Command{
		Use:   "create GROUP NAME",
		Short: "Create a setlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			setlist.Name = args[1]
			if err := a.library.AddSetlist(ctx, group.GroupID, &setlist); err != nil {
				return fmt.Errorf("failed to create setlist: %w", err)
			}
			a.io.Printf("Setlist %q created, id %s\n", setlist.Name, setlist.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&setlist.Venue, "venue", "", "venue")
	cmd.Flags().StringVar(&setlist.Date, "date", "", "gig date, YYYY-MM-DD")
	return cmd
}

func (a *App) setlistAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add GROUP SETLIST_ID SONG_ID",
		Short: "Append a song to a setlist",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			item, err := a.library.AddToSetlist(ctx, group.GroupID, args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to add song to setlist: %w", err)
			}
			a.io.Printf("Added at position %d, item id %s\n", item.Position+1, item.ID)
			return nil
		},
	}
}

func (a *App) setlistMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move GROUP SETLIST_ID ITEM_ID POSITION",
		Short: "Move a setlist item, positions start at 1",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			position, err := strconv.Atoi(args[3])
			if err != nil || position < 1 {
				return fmt.Errorf("invalid position %q", args[3])
			}
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.library.MoveSetlistItem(ctx, group.GroupID, args[1], args[2], position-1); err != nil {
				return fmt.Errorf("failed to move item: %w", err)
			}
			a.io.Printf("Item %s moved to position %d\n", args[2], position)
			return nil
		},
	}
}

func (a *App) setlistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list GROUP",
		Short: "List setlists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			setlists, err := a.library.ListSetlists(ctx, group.GroupID)
			if err != nil {
				return fmt.Errorf("failed to list setlists: %w", err)
			}
			if len(setlists) == 0 {
				a.io.Println("No setlists yet.")
				return nil
			}

			w := tabwriter.NewWriter(a.io, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVENUE\tDATE\tSONGS")
			for _, s := range setlists {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Venue, s.Date, len(s.Items))
			}
			return w.Flush()
		},
	}
}

func (a *App) setlistDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete GROUP SETLIST_ID",
		Short: "Delete a setlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.library.DeleteSetlist(ctx, group.GroupID, args[1]); err != nil {
				return fmt.Errorf("failed to delete setlist: %w", err)
			}
			a.io.Printf("Setlist %s deleted\n", args[1])
			return nil
		},
	}
}
