package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/mcpm/internal/buildinfo"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Manager creates, restores and prunes IDE config backups.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups kept per IDE.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager rooted at paths.BackupDir unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RetentionCount returns the configured number of backups kept per IDE.
func (m *Manager) RetentionCount() int {
	return m.retentionCount
}

// Backup copies the given files into a new backup for ide. Missing files
// are skipped; when none exist no backup is created and the returned
// manifest is nil. Older backups beyond the retention count are pruned.
func (m *Manager) Backup(ide string, files []string) (*Manifest, error) {
	if ide == "" {
		return nil, errors.Wrap(errors.ErrMissingName, "ide")
	}

	var present []string
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", f)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", f)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil, nil
	}

	created := m.now().UTC()
	id, dir, err := m.reserve(ide, created)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   created,
		IDE:         ide,
		ToolVersion: buildinfo.Version(),
		ID:          id,
	}
	for _, src := range present {
		rel := relPath(src)
		hash, mode, err := copyFile(src, filepath.Join(dir, rel))
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", src)
		}
		manifest.Files = append(manifest.Files, File{
			OriginalPath: src,
			RelPath:      rel,
			SHA256:       hash,
			Mode:         mode,
		})
	}

	if err := fileutil.WriteJSON(filepath.Join(dir, manifestName), manifest, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(ide, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// reserve creates a fresh backup directory for ide.
func (m *Manager) reserve(ide string, at time.Time) (string, string, error) {
	if err := os.MkdirAll(m.ideDir(ide), 0o700); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}
	base := strings.ReplaceAll(at.Format(idLayout), ".", "")
	for i := 0; i < 100; i++ {
		id := base
		if i > 0 {
			id = base + "-" + strconv.Itoa(i)
		}
		dir := m.backupPath(ide, id)
		err := os.Mkdir(dir, 0o700)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
	}
	return "", "", errors.Newf("could not allocate backup id for %s", ide)
}

// Restore copies every file of a backup back to its original location
// after verifying its hash.
func (m *Manager) Restore(ide, id string) (*Manifest, error) {
	manifest, err := m.Get(ide, id)
	if err != nil {
		return nil, err
	}

	dir := m.backupPath(ide, manifest.ID)
	for _, f := range manifest.Files {
		src := filepath.Join(dir, f.RelPath)
		hash, err := hashFile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		if hash != f.SHA256 {
			return nil, errors.WithHint(errors.Wrapf(ErrBackupCorrupted, "%s hash mismatch", f.RelPath),
				"Pick an older backup from: mcpm backup list")
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		if err := fileutil.WriteFile(f.OriginalPath, data, f.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}
	return manifest, nil
}

// List returns the backups for ide, newest first.
func (m *Manager) List(ide string) ([]Manifest, error) {
	if ide == "" {
		return nil, errors.Wrap(errors.ErrMissingName, "ide")
	}

	entries, err := os.ReadDir(m.ideDir(ide))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(ide, entry.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Latest returns the newest backup for ide.
func (m *Manager) Latest(ide string) (*Manifest, error) {
	list, err := m.List(ide)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Prune keeps the newest keep backups for ide and removes the rest.
func (m *Manager) Prune(ide string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}
	manifests, err := m.List(ide)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}
	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := os.RemoveAll(m.backupPath(ide, old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// Get loads the manifest of one backup.
func (m *Manager) Get(ide, id string) (*Manifest, error) {
	if ide == "" {
		return nil, errors.Wrap(errors.ErrMissingName, "ide")
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, errors.Newf("invalid backup id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(m.backupPath(ide, id), manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func (m *Manager) backupPath(ide, id string) string {
	return filepath.Join(m.ideDir(ide), id)
}

func (m *Manager) ideDir(ide string) string {
	return filepath.Join(m.rootDir, ide)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst and returns the content hash and source mode.
// Backups are readable only by the owner since IDE configs hold tokens.
func copyFile(src, dst string) (string, fs.FileMode, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return "", 0, errors.Wrap(err, "creating parent directory")
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := out.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	return hex.EncodeToString(h.Sum(nil)), info.Mode(), nil
}

// relPath maps an absolute path to a location inside a backup directory.
// Volume separators are dropped so the result is valid on every platform.
func relPath(abs string) string {
	clean := filepath.Clean(abs)
	clean = strings.ReplaceAll(clean, ":", "")
	return strings.TrimLeft(clean, `/\`)
}
