package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/client/sync"
)

type profileFlags struct {
	member     string
	instrument string
}

func (f *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.member, "member", "", "your name in the band")
	cmd.Flags().StringVar(&f.instrument, "instrument", "", "the instrument you play")
}

func (a *App) profile(f profileFlags) (sync.Profile, error) {
	name, err := a.prompt(f.member, "Your name")
	if err != nil {
		return sync.Profile{}, err
	}
	return sync.Profile{Name: name, Instrument: f.instrument}, nil
}

func (a *App) createCmd() *cobra.Command {
	var (
		flags profileFlags
		share bool
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a band group and become its leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd.Context(), args[0], flags, share)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&share, "share", false, "issue a share code right away")
	return cmd
}

func (a *App) runCreate(ctx context.Context, name string, flags profileFlags, share bool) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	profile, err := a.profile(flags)
	if err != nil {
		return err
	}

	group, err := svc.CreateGroup(ctx, name, profile)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	a.io.Printf("Group %q created\n", group.Name)
	a.io.Printf("Group ID: %s\n", group.GroupID)

	if share {
		return a.runShare(ctx, group.GroupID, a.cfg.Share.TTL)
	}
	a.io.Println("Run 'bandsync share " + group.GroupID + "' to invite the band.")
	return nil
}

func (a *App) shareCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "share GROUP",
		Short: "Issue a share code that lets another device join the group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.group(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = a.cfg.Share.TTL
			}
			return a.runShare(cmd.Context(), group.GroupID, ttl)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "code lifetime, 0 for a code that never expires")
	return cmd
}

func (a *App) runShare(ctx context.Context, groupID string, ttl time.Duration) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	code, err := svc.CreateShareCode(ctx, groupID, ttl)
	if err != nil {
		return fmt.Errorf("failed to create share code: %w", err)
	}

	a.io.Printf("Share code: %s\n", code.Code)
	a.io.Printf("Link:       %s\n", code.DeepLink)
	if code.ExpiresAt > 0 {
		a.io.Printf("Expires:    %s\n", time.UnixMilli(code.ExpiresAt).Format(time.RFC1123))
	}
	return nil
}

func (a *App) joinCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "join CODE",
		Short: "Join a band group with a share code or link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			profile, err := a.profile(flags)
			if err != nil {
				return err
			}

			group, result, err := svc.JoinGroup(ctx, args[0], profile)
			if err != nil {
				return fmt.Errorf("failed to join group: %w", err)
			}

			a.io.Printf("Joined %q (%s)\n", group.Name, group.GroupID)
			if result != nil {
				a.printResult(result)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
