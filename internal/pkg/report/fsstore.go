package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps artifacts on local disk under {dir}/{vin}/{objectName}.
// Meant for single-node deployments without an object store; delivery falls
// back to email attachments since local paths are not emailable links.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Lookup(ctx context.Context, vin string) (*Artifact, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir, vin))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".pdf") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	// Object names embed a UUID, so lexical order is arbitrary; any stored
	// artifact for the VIN is equally valid. Pick deterministically.
	sort.Strings(names)
	name := names[len(names)-1]

	pdf, err := os.ReadFile(filepath.Join(s.Dir, vin, name))
	if err != nil {
		return nil, err
	}

	return &Artifact{
		VIN:        vin,
		ObjectName: name,
		PDF:        pdf,
	}, nil
}

func (s *FileStore) Save(ctx context.Context, artifact *Artifact) error {
	if artifact == nil || len(artifact.PDF) == 0 {
		return fmt.Errorf("nothing to save for vin %q", artifactVIN(artifact))
	}

	dir := filepath.Join(s.Dir, artifact.VIN)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, artifact.ObjectName), artifact.PDF, 0644)
}

func artifactVIN(a *Artifact) string {
	if a == nil {
		return ""
	}
	return a.VIN
}
