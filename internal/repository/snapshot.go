package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"SignalDesk/internal/domain/models"
	pkghttp "SignalDesk/pkg/http"
)

// SnapshotLoader fetches the startup configuration snapshot from a local
// file or an HTTP endpoint, depending on the source scheme.
type SnapshotLoader struct {
	client *pkghttp.Client
}

// NewSnapshotLoader creates a snapshot loader.
func NewSnapshotLoader(client *pkghttp.Client) *SnapshotLoader {
	return &SnapshotLoader{client: client}
}

// Load reads and normalizes the snapshot from source. Callers are expected
// to fall back to models.EmptySnapshot on error.
func (l *SnapshotLoader) Load(ctx context.Context, source string) (*models.Snapshot, error) {
	if source == "" {
		return nil, fmt.Errorf("snapshot: empty source")
	}

	snap := &models.Snapshot{}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if err := l.client.GetJSON(ctx, source, snap); err != nil {
			return nil, fmt.Errorf("snapshot: fetch %s: %w", source, err)
		}
	} else {
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("snapshot: read %s: %w", source, err)
		}
		if err := json.Unmarshal(raw, snap); err != nil {
			return nil, fmt.Errorf("snapshot: parse %s: %w", source, err)
		}
	}

	snap.Normalize()
	return snap, nil
}
