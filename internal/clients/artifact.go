package clients

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/masquevpn/panel/internal/backend"
)

// ArtifactName is the file name a client's configuration is saved under.
func ArtifactName(id string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + id))
	if base == "/" || base == "." || base == ".." {
		return "", fmt.Errorf("invalid client id %q", id)
	}
	return base + ".client.toml", nil
}

// SaveArtifact writes art into dir, readable only by the owner.
func SaveArtifact(dir string, art backend.Artifact) (string, error) {
	name, err := ArtifactName(art.ClientID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, art.Data, 0o600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}
