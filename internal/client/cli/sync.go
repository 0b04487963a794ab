package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/client/sync"
	"github.com/iudanet/bandsync/internal/models"
)

func (a *App) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [GROUP...]",
		Short: "Exchange changes with the band",
		Long:  "Runs one sync cycle for the given groups, or for every joined group when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd.Context(), args)
		},
	}
}

func (a *App) runSync(ctx context.Context, refs []string) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	groups, err := a.groups(ctx, refs)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		a.io.Println("No groups joined yet. Use 'bandsync create' or 'bandsync join'.")
		return nil
	}

	var errs []error
	for _, group := range groups {
		a.io.Printf("=== %s ===\n", group.Name)
		result, err := svc.Sync(ctx, group.GroupID)
		if result != nil {
			a.printResult(result)
		}
		if err != nil {
			a.io.Printf("Sync failed: %v\n", err)
			errs = append(errs, fmt.Errorf("group %s: %w", group.Name, err))
		}
	}
	return errors.Join(errs...)
}

// groups возвращает указанные группы или все присоединенные
func (a *App) groups(ctx context.Context, refs []string) ([]*models.JoinedGroup, error) {
	if len(refs) == 0 {
		groups, err := a.state.ListGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list groups: %w", err)
		}
		return groups, nil
	}
	groups := make([]*models.JoinedGroup, 0, len(refs))
	for _, ref := range refs {
		g, err := a.group(ctx, ref)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (a *App) printResult(r *sync.SyncResult) {
	a.io.Printf("Status:    %s\n", r.Status)
	a.io.Printf("Pulled:    %d entries\n", r.Pulled)
	a.io.Printf("Pushed:    %d entries\n", r.Pushed)
	a.io.Printf("Applied:   %d\n", r.Applied)
	if r.Merged > 0 {
		a.io.Printf("Merged:    %d\n", r.Merged)
	}
	if r.Skipped > 0 {
		a.io.Printf("Skipped:   %d (snapshot unavailable)\n", r.Skipped)
	}
	if len(r.Conflicts) > 0 {
		a.io.Printf("Conflicts: %d, review them with 'bandsync conflicts'\n", len(r.Conflicts))
	}
	if len(r.Devices) > 0 {
		names := make([]string, 0, len(r.Devices))
		for _, d := range r.Devices {
			state := "offline"
			if d.IsOnline {
				state = "online"
			}
			names = append(names, fmt.Sprintf("%s (%s)", d.DeviceName, state))
		}
		a.io.Printf("Devices:   %s\n", strings.Join(names, ", "))
	}
}

func (a *App) statusCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status [GROUP...]",
		Short: "Show pending changes and open conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd.Context(), args, refresh)
		},
	}
	cmd.Flags().BoolVar(&refresh, "sync", false, "run a sync cycle before reporting")
	return cmd
}

func (a *App) runStatus(ctx context.Context, refs []string, refresh bool) error {
	groups, err := a.groups(ctx, refs)
	if err != nil {
		return err
	}

	svc, err := a.service(ctx)
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		a.io.Println("Cloud: not logged in")
	case err != nil:
		return err
	}

	if len(groups) == 0 {
		a.io.Println("No groups joined yet.")
		return nil
	}

	for _, group := range groups {
		status := models.StatusOffline
		pending := -1
		if svc != nil {
			if refresh {
				if result, err := svc.Sync(ctx, group.GroupID); result != nil {
					status = result.Status
				} else if err != nil {
					status = models.StatusError
				}
			} else {
				status = svc.Status(group.GroupID)
			}
			if n, err := svc.PendingCount(ctx, group.GroupID); err == nil {
				pending = n
			} else {
				a.logger.Warn("failed to count pending changes", "group_id", group.GroupID, "error", err)
			}
		}

		conflicts, err := a.state.ListConflicts(ctx, group.GroupID)
		if err != nil {
			return fmt.Errorf("failed to list conflicts: %w", err)
		}
		if len(conflicts) > 0 && status != models.StatusAuthenticationRequired {
			status = models.StatusConflictsDetected
		}

		a.io.Printf("%s (%s)\n", group.Name, group.GroupID)
		a.io.Printf("  status:    %s\n", status)
		if pending >= 0 {
			a.io.Printf("  pending:   %d\n", pending)
		}
		a.io.Printf("  conflicts: %d\n", len(conflicts))
	}
	return nil
}
