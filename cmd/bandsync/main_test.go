package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/client/cli"
	"github.com/iudanet/bandsync/internal/client/storage/boltdb"
	"github.com/iudanet/bandsync/internal/config"
	"github.com/iudanet/bandsync/internal/models"
)

func TestSplitConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantArgs []string
		wantPath string
	}{
		{name: "none", args: []string{"sync", "g1"}, wantArgs: []string{"sync", "g1"}},
		{name: "separate", args: []string{"--config", "/etc/b.yaml", "sync"}, wantArgs: []string{"sync"}, wantPath: "/etc/b.yaml"},
		{name: "inline", args: []string{"status", "--config=b.yaml"}, wantArgs: []string{"status"}, wantPath: "b.yaml"},
		{name: "after dashes", args: []string{"song", "add", "--", "--config"}, wantArgs: []string{"song", "add", "--", "--config"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, path := splitConfigFlag(tt.args)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestLoadDevice(t *testing.T) {
	ctx := context.Background()
	state, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	first, err := loadDevice(ctx, state, "Laptop")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	again, err := loadDevice(ctx, state, "Laptop")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	renamed, err := loadDevice(ctx, state, "Stage laptop")
	require.NoError(t, err)
	assert.Equal(t, first.ID, renamed.ID, "id survives a rename")
	assert.Equal(t, "Stage laptop", renamed.Name)
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	state, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	env := &environment{cfg: &config.Config{}, state: state}
	_, err = env.credentials(ctx)
	assert.ErrorIs(t, err, cli.ErrNotLoggedIn)

	env.cfg.Cloud = config.CloudConfig{Endpoint: "s3.local", Bucket: "band", AccessKey: "AK", SecretKey: "SK"}
	creds, err := env.credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3.local", creds.Endpoint)

	stored := &models.CloudCredentials{Endpoint: "s3.example.com", Bucket: "band", AccessKey: "AK2", SecretKey: "SK2"}
	require.NoError(t, state.SaveCredentials(ctx, stored))
	creds, err = env.credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, *stored, creds, "login wins over configuration")
}
