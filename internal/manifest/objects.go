package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
)

// PutSnapshot uploads rec at its content address.
// A snapshot already present is left as is.
func (m *Manager) PutSnapshot(ctx context.Context, folderID string, rec *models.EntityRecord) error {
	p := ObjectPath(folderID, rec.ID, rec.Checksum)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return m.putObject(ctx, p, data)
}

// GetSnapshot downloads the snapshot with the given checksum and verifies it
func (m *Manager) GetSnapshot(ctx context.Context, folderID, entityID, checksum string) (*models.EntityRecord, error) {
	p := ObjectPath(folderID, entityID, checksum)

	data, err := m.getObject(ctx, p)
	if err != nil {
		return nil, err
	}

	var rec models.EntityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrObjectCorrupt, p, err)
	}

	sum, err := rec.ComputeChecksum()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrObjectCorrupt, p, err)
	}
	if sum != checksum || rec.ID != entityID {
		return nil, fmt.Errorf("%w: %s", ErrObjectCorrupt, p)
	}

	return &rec, nil
}

// PutFile uploads the content of a song file
func (m *Manager) PutFile(ctx context.Context, folderID, entityID, fileChecksum string, data []byte) error {
	return m.putObject(ctx, FilePath(folderID, entityID, fileChecksum), data)
}

// GetFile downloads the content of a song file and verifies its checksum
func (m *Manager) GetFile(ctx context.Context, folderID, entityID, fileChecksum string) ([]byte, error) {
	p := FilePath(folderID, entityID, fileChecksum)

	data, err := m.getObject(ctx, p)
	if err != nil {
		return nil, err
	}
	if crypto.ChecksumBytes(data) != fileChecksum {
		return nil, fmt.Errorf("%w: %s", ErrObjectCorrupt, p)
	}
	return data, nil
}

// HasObject reports whether an object exists at path
func (m *Manager) HasObject(ctx context.Context, p string) (bool, error) {
	dir, _ := path.Split(p)
	list, err := m.transport.List(ctx, dir)
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, obj := range list {
		if obj.Path == p {
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) putObject(ctx context.Context, p string, data []byte) error {
	if m.cipher != nil {
		sealed, err := m.cipher.Seal(p, data)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", p, err)
		}
		data = sealed
	}

	_, err := m.transport.Put(ctx, p, data, cloud.PutOptions{IfNoneMatch: true})
	if err != nil && !errors.Is(err, cloud.ErrPreconditionFailed) {
		return fmt.Errorf("failed to upload %s: %w", p, err)
	}
	return nil
}

func (m *Manager) getObject(ctx context.Context, p string) ([]byte, error) {
	data, _, err := m.transport.Get(ctx, p)
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, p)
		}
		return nil, fmt.Errorf("failed to download %s: %w", p, err)
	}

	if crypto.IsSealed(data) {
		if m.cipher == nil {
			return nil, fmt.Errorf("%w: %s is encrypted and no group key is configured", crypto.ErrDecrypt, p)
		}
		return m.cipher.Open(p, data)
	}
	return data, nil
}

// PublishDevice writes the presence object of a device
func (m *Manager) PublishDevice(ctx context.Context, folderID string, info models.DeviceInfo) error {
	info.IsOnline = false
	if err := m.putJSON(ctx, DevicePath(folderID, info.DeviceID), info, cloud.PutOptions{}); err != nil {
		return fmt.Errorf("failed to publish device: %w", err)
	}
	return nil
}

// ListDevices reads every presence object of the group and derives IsOnline
// from LastSeen and window (ms). Unreadable objects are skipped.
func (m *Manager) ListDevices(ctx context.Context, folderID string, window int64) ([]models.DeviceInfo, error) {
	prefix := DevicesPrefix(folderID)
	list, err := m.transport.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	now := m.now().UnixMilli()
	devices := make([]models.DeviceInfo, 0, len(list))
	for _, obj := range list {
		if !strings.HasSuffix(obj.Path, ".json") {
			continue
		}

		data, _, err := m.transport.Get(ctx, obj.Path)
		if err != nil {
			if errors.Is(err, cloud.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to read device %s: %w", obj.Path, err)
		}

		var info models.DeviceInfo
		if err := json.Unmarshal(data, &info); err != nil {
			m.logger.Warn("skipping unreadable device object", "path", obj.Path, "error", err)
			continue
		}
		info.IsOnline = info.Online(now, window)
		devices = append(devices, info)
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceID < devices[j].DeviceID })
	return devices, nil
}
