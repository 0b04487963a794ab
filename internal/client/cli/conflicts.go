package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/models"
)

func (a *App) conflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts GROUP",
		Short: "List conflicts waiting for a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			conflicts, err := a.state.ListConflicts(ctx, group.GroupID)
			if err != nil {
				return fmt.Errorf("failed to list conflicts: %w", err)
			}
			if len(conflicts) == 0 {
				a.io.Println("No conflicts.")
				return nil
			}
			for i := range conflicts {
				a.printConflict(&conflicts[i])
			}
			return nil
		},
	}
}

func (a *App) printConflict(c *models.SyncConflict) {
	name := c.EntityName
	if name == "" {
		name = c.EntityID
	}
	a.io.Printf("%s  %s  %s %q\n", c.ConflictID, c.ConflictType, strings.ToLower(string(c.EntityType)), name)
	a.io.Printf("  local:  %s\n", describeVersion(c.LocalVersion))
	a.io.Printf("  remote: %s\n", describeVersion(c.RemoteVersion))
	a.io.Printf("  actions: %s\n", strings.Join(actionsFor(c), ", "))
}

func describeVersion(v models.ConflictVersion) string {
	who := v.AuthorName
	if who == "" {
		who = v.DeviceName
	}
	s := v.Description
	if who != "" {
		s += " by " + who
	}
	if v.DeviceName != "" && v.DeviceName != who {
		s += " on " + v.DeviceName
	}
	if v.Timestamp > 0 {
		s += ", " + time.UnixMilli(v.Timestamp).Format(time.DateTime)
	}
	return s
}

// actionsFor решения, которые имеют смысл для типа конфликта
func actionsFor(c *models.SyncConflict) []string {
	actions := []models.ResolutionAction{models.ActionKeepLocal, models.ActionAcceptRemote}
	switch c.ConflictType {
	case models.ConflictAnnotationOverlap:
		actions = append(actions, models.ActionMergeAnnotations, models.ActionLayerSeparate)
	case models.ConflictSimultaneousEdit, models.ConflictStructureChange:
		actions = append(actions, models.ActionManualMerge)
	}
	out := make([]string, len(actions))
	for i, act := range actions {
		out[i] = string(act)
	}
	return out
}

func (a *App) resolveCmd() *cobra.Command {
	var payloadFile string
	cmd := &cobra.Command{
		Use:   "resolve GROUP CONFLICT_ID ACTION",
		Short: "Apply a decision to a conflict",
		Long: `Applies one of KEEP_LOCAL, ACCEPT_REMOTE, MERGE_ANNOTATIONS, LAYER_SEPARATE
or MANUAL_MERGE. MANUAL_MERGE takes the merged entity as JSON from --payload
(use - for standard input).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd.Context(), cmd.InOrStdin(), args[0], args[1], args[2], payloadFile)
		},
	}
	cmd.Flags().StringVar(&payloadFile, "payload", "", "file with the merged entity for MANUAL_MERGE")
	return cmd
}

func (a *App) runResolve(ctx context.Context, stdin io.Reader, ref, conflictID, actionArg, payloadFile string) error {
	action, ok := models.ParseResolutionAction(strings.ToUpper(actionArg))
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidAction, actionArg)
	}

	var payload json.RawMessage
	if payloadFile != "" {
		var (
			data []byte
			err  error
		)
		if payloadFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(payloadFile)
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		payload = data
	}

	group, err := a.group(ctx, ref)
	if err != nil {
		return err
	}
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	entries, err := svc.ResolveConflict(ctx, group.GroupID, conflictID, action, payload)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	a.io.Printf("Conflict %s resolved with %s\n", conflictID, action)
	if len(entries) > 0 {
		a.io.Printf("%d change(s) will be sent on the next sync\n", len(entries))
	}
	return nil
}
