package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"photo-capture-backend/internal/config"
	"photo-capture-backend/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhotoRepository_Disk(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "uploads")

	repo, err := newPhotoRepository(context.Background(), cfg)
	require.NoError(t, err)

	disk, ok := repo.(*repository.DiskPhotoRepository)
	require.True(t, ok)
	assert.DirExists(t, disk.Dir())
}

func TestNewPhotoRepository_S3(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendS3
	cfg.AWS.S3Bucket = "photos"
	cfg.AWS.AccessKey = "key"
	cfg.AWS.SecretKey = "secret"
	cfg.AWS.Endpoint = "http://127.0.0.1:9000"

	repo, err := newPhotoRepository(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &repository.S3PhotoRepository{}, repo)
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	setupLogger(config.LogConfig{Level: "warn", Format: "json"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogger(config.LogConfig{Level: "bogus", Format: "json"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestRootCommandConfigFlag(t *testing.T) {
	flag := rootCmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "config.yaml", flag.DefValue)
	assert.Equal(t, "c", flag.Shorthand)
}
