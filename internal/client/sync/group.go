package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/sharecode"
	"github.com/iudanet/bandsync/internal/validation"
)

// CreateGroup creates the group folder with manifest version 1 and an empty
// change log, registers the group locally and records the GROUP and MEMBER
// entities. They reach the peers on the next Sync.
func (s *service) CreateGroup(ctx context.Context, name string, profile Profile) (*models.JoinedGroup, error) {
	if err := validation.ValidateName("group", name); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("member", profile.Name); err != nil {
		return nil, err
	}

	device := s.tracker.Device()
	now := s.now().UnixMilli()
	groupID := uuid.New().String()
	folderID := uuid.New().String()
	memberID := uuid.New().String()

	gm := &models.GroupManifest{
		GroupID:    groupID,
		Name:       name,
		CreatedBy:  memberID,
		AppVersion: s.cfg.AppVersion,
		Members: []models.MemberInfo{{
			MemberID:  memberID,
			Name:      profile.Name,
			Role:      models.RoleLeader,
			DeviceIDs: []string{device.ID},
			JoinedAt:  now,
		}},
		Permissions:  models.DefaultPermissions(),
		SyncSettings: models.DefaultSyncSettings(),
		CreatedAt:    now,
	}
	if err := s.manifests.CreateManifest(ctx, folderID, gm); err != nil {
		return nil, err
	}

	group := &models.JoinedGroup{
		GroupID:  groupID,
		FolderID: folderID,
		Name:     name,
		MemberID: memberID,
		JoinedAt: now,
	}
	if err := s.state.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}
	if err := s.state.SaveCursors(ctx, groupID, models.Cursors{ManifestVersion: gm.Version}); err != nil {
		return nil, fmt.Errorf("failed to save cursors: %w", err)
	}

	groupRec, err := models.NewEntityRecord(models.EntityGroup, groupID, name, groupID, models.Group{
		ID:        groupID,
		Name:      name,
		FolderID:  folderID,
		CreatedBy: memberID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build group record: %w", err)
	}
	groupRec.MemberID = memberID
	if _, err := s.tracker.Track(ctx, groupRec, models.ChangeCreate, "created group "+name, nil); err != nil {
		return nil, err
	}

	if err := s.trackMember(ctx, group, profile, models.RoleLeader, "founded the group"); err != nil {
		return nil, err
	}

	s.setStatus(groupID, models.StatusUpToDate)
	s.logger.Info("Group created", "group_id", groupID, "folder_id", folderID, "member_id", memberID)
	return group, nil
}

// JoinGroup resolves a share code or deep link, adds this device (and a new
// member when the device is unknown) to the manifest, registers the group
// locally with empty cursors and runs the initial full sync.
func (s *service) JoinGroup(ctx context.Context, code string, profile Profile) (*models.JoinedGroup, *SyncResult, error) {
	if s.codes == nil {
		return nil, nil, ErrShareCodesDisabled
	}

	sc, err := s.codes.Resolve(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	gm, err := s.manifests.FetchManifest(ctx, sc.FolderID)
	if err != nil {
		return nil, nil, err
	}
	if gm.GroupID != sc.GroupID {
		return nil, nil, fmt.Errorf("%w: code points to group %s, folder holds %s", sharecode.ErrShareCodeInvalid, sc.GroupID, gm.GroupID)
	}
	if err := CheckCompatibility(s.cfg.AppVersion, gm); err != nil {
		return nil, nil, err
	}

	device := s.tracker.Device()
	now := s.now().UnixMilli()

	var memberID string
	if existing, err := s.state.GetGroup(ctx, gm.GroupID); err == nil {
		memberID = existing.MemberID
	} else if !errors.Is(err, storage.ErrGroupNotFound) {
		return nil, nil, fmt.Errorf("failed to get group: %w", err)
	}

	owner, deviceKnown := gm.MemberByDevice(device.ID)
	if deviceKnown {
		memberID = owner.MemberID
	}
	_, known := gm.Member(memberID)
	newMember := !known
	if newMember {
		if err := validation.ValidateName("member", profile.Name); err != nil {
			return nil, nil, err
		}
		if memberID == "" {
			memberID = uuid.New().String()
		}
	}

	if !deviceKnown {
		gm, err = s.manifests.UpdateManifest(ctx, sc.FolderID, func(m *models.GroupManifest) error {
			m.AddDevice(models.MemberInfo{
				MemberID: memberID,
				Name:     profile.Name,
				Role:     models.RoleMember,
				JoinedAt: now,
			}, device.ID)
			if s.cfg.AppVersion != "" {
				m.AppVersion = s.cfg.AppVersion
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	group := &models.JoinedGroup{
		GroupID:  gm.GroupID,
		FolderID: sc.FolderID,
		Name:     gm.Name,
		MemberID: memberID,
		JoinedAt: now,
	}
	if err := s.state.SaveGroup(ctx, group); err != nil {
		return nil, nil, fmt.Errorf("failed to save group: %w", err)
	}
	if err := s.state.SaveCursors(ctx, group.GroupID, models.Cursors{}); err != nil {
		return nil, nil, fmt.Errorf("failed to reset cursors: %w", err)
	}

	if newMember {
		if err := s.trackMember(ctx, group, profile, models.RoleMember, "joined the group"); err != nil {
			return nil, nil, err
		}
	}

	s.logger.Info("Joined group",
		"group_id", group.GroupID,
		"member_id", memberID,
		"new_member", newMember,
		"manifest_version", gm.Version,
	)

	result, err := s.Sync(ctx, group.GroupID)
	return group, result, err
}

func (s *service) trackMember(ctx context.Context, group *models.JoinedGroup, profile Profile, role models.Role, description string) error {
	rec, err := models.NewEntityRecord(models.EntityMember, group.MemberID, profile.Name, group.GroupID, models.Member{
		ID:         group.MemberID,
		GroupID:    group.GroupID,
		Name:       profile.Name,
		Role:       role,
		Instrument: profile.Instrument,
	})
	if err != nil {
		return fmt.Errorf("failed to build member record: %w", err)
	}
	rec.MemberID = group.MemberID

	_, err = s.tracker.Track(ctx, rec, models.ChangeCreate, description, nil)
	return err
}

// CreateShareCode issues an invitation code if the member's role allows inviting
func (s *service) CreateShareCode(ctx context.Context, groupID string, ttl time.Duration) (*models.ShareCode, error) {
	if s.codes == nil {
		return nil, ErrShareCodesDisabled
	}

	group, err := s.state.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	gm, err := s.manifests.FetchManifest(ctx, group.FolderID)
	if err != nil {
		return nil, err
	}
	if !gm.Can(group.MemberID, gm.Permissions.CanInvite) {
		return nil, fmt.Errorf("%w: member %s cannot invite", ErrPermissionDenied, group.MemberID)
	}

	return s.codes.Issue(ctx, groupID, group.FolderID, ttl)
}
