package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AssetHost stores and removes uploaded assets addressed by an opaque id.
type AssetHost interface {
	Save(ctx context.Context, assetID string, data []byte) (string, error)
	Delete(ctx context.Context, assetID string) error
}

// LocalAssetHost keeps assets on disk under a base directory.
type LocalAssetHost struct {
	baseDir      string
	publicPrefix string
}

// NewLocalAssetHost ensures the base directory exists and returns a handle.
func NewLocalAssetHost(baseDir, publicPrefix string) (*LocalAssetHost, error) {
	if baseDir == "" {
		baseDir = "./assets"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets directory: %w", err)
	}
	if publicPrefix == "" {
		publicPrefix = "/assets"
	}
	return &LocalAssetHost{baseDir: baseDir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Save writes data for assetID and returns its public URL.
func (s *LocalAssetHost) Save(ctx context.Context, assetID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.resolve(assetID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("prepare asset directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return s.publicPrefix + "/" + path.Clean(assetID), nil
}

// Delete removes the asset. A missing asset is not an error.
func (s *LocalAssetHost) Delete(ctx context.Context, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolve(assetID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete asset %s: %w", assetID, err)
	}
	return nil
}

// resolve maps assetID onto a path inside baseDir, rejecting ids that would
// escape it.
func (s *LocalAssetHost) resolve(assetID string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(assetID))
	if clean == "/" || assetID == "" {
		return "", fmt.Errorf("invalid asset id %q", assetID)
	}
	if path.Clean(assetID) != strings.TrimPrefix(clean, "/") {
		return "", fmt.Errorf("invalid asset id %q", assetID)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}
