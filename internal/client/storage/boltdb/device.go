package boltdb

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

const keyDevice = "current"

// SaveDevice stores device identity
func (s *Storage) SaveDevice(ctx context.Context, device *models.Device) error {
	return s.update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(bucketDevice), keyDevice, device)
	})
}

// GetDevice returns device identity
// Returns ErrDeviceNotFound before the first run
func (s *Storage) GetDevice(ctx context.Context) (*models.Device, error) {
	var device models.Device

	err := s.view(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx.Bucket(bucketDevice), keyDevice, &device)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrDeviceNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &device, nil
}

// SaveCredentials stores cloud credentials
func (s *Storage) SaveCredentials(ctx context.Context, creds *models.CloudCredentials) error {
	return s.update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(bucketCredentials), keyDevice, creds)
	})
}

// GetCredentials retrieves cloud credentials
// Returns ErrCredentialsNotFound if nothing was stored
func (s *Storage) GetCredentials(ctx context.Context) (*models.CloudCredentials, error) {
	var creds models.CloudCredentials

	err := s.view(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx.Bucket(bucketCredentials), keyDevice, &creds)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrCredentialsNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &creds, nil
}

// DeleteCredentials removes stored credentials (logout)
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)

		// Проверяем существование данных
		if bucket.Get([]byte(keyDevice)) == nil {
			return storage.ErrCredentialsNotFound
		}

		return bucket.Delete([]byte(keyDevice))
	})
}
