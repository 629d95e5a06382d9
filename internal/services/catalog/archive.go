package catalog

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcadelab/gamehub/internal/model"
)

// ManifestName is the metadata file developers may ship inside a game
// archive. Its fields act as defaults for the upload request.
const ManifestName = "game_info.json"

// Manifest mirrors the game_info.json shipped inside an archive
type Manifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
}

// ArchiveStore owns the on-disk game directory tree. Each game's archive
// is extracted into <root>/<gameID>/; the worker orchestrator launches
// the game's entry point from the same directory.
type ArchiveStore struct {
	root string
}

// NewArchiveStore creates an archive store rooted at dir, creating it if
// needed
func NewArchiveStore(dir string) (*ArchiveStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating games dir: %w", err)
	}
	return &ArchiveStore{root: dir}, nil
}

// GameDir returns the directory a game's files live in
func (a *ArchiveStore) GameDir(id model.GameID) string {
	return filepath.Join(a.root, string(id))
}

// ReadManifest extracts the manifest from archive bytes, if present
func ReadManifest(archive []byte) (*Manifest, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()

		var m Manifest
		if err := json.NewDecoder(rc).Decode(&m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	return nil, nil
}

// Store extracts archive bytes into the game's directory, replacing any
// prior contents
func (a *ArchiveStore) Store(id model.GameID, archive []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	dir := a.GameDir(id)
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, f := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		// Reject entries escaping the game directory
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes game directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, rc)
	return err
}

// WriteManifest records the current catalog metadata into the game's
// directory so downloaded archives carry their own version
func (a *ArchiveStore) WriteManifest(game *model.Game) error {
	m := Manifest{
		ID:          string(game.ID),
		Name:        game.Name,
		Description: game.Description,
		Version:     game.Version,
		MinPlayers:  game.MinPlayers,
		MaxPlayers:  game.MaxPlayers,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(a.GameDir(game.ID), ManifestName), data, 0o644)
}

// Zip packages the game's stored directory into archive bytes
func (a *ArchiveStore) Zip(id model.GameID) ([]byte, error) {
	dir := a.GameDir(id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, model.ErrGameNotFound
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Remove deletes the game's stored directory
func (a *ArchiveStore) Remove(id model.GameID) error {
	return os.RemoveAll(a.GameDir(id))
}
