package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of backups kept per IDE.
const DefaultRetentionCount = 5

const manifestName = "manifest.json"

// idLayout formats backup ids. Millisecond precision keeps ids sortable;
// same-millisecond collisions get a numeric suffix.
const idLayout = "20060102T150405.000"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the IDE.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a backed up file no longer matches the
	// hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one backup. It is stored as manifest.json inside the
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// IDE is the IDE target id the files belong to.
	IDE string `json:"ide"`

	Files []File `json:"files"`

	// ToolVersion is the mcpm version that wrote the backup.
	ToolVersion string `json:"mcpm_version"`

	// ID is the backup directory name. Populated on load.
	ID string `json:"-"`
}

// File is one backed up file.
type File struct {
	OriginalPath string      `json:"original_path"`
	RelPath      string      `json:"rel_path"`
	SHA256       string      `json:"sha256"`
	Mode         fs.FileMode `json:"mode"`
}
