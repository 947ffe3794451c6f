package backup

import (
	"sync"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Session takes at most one backup per IDE during a single command, no
// matter how many files of that IDE are written.
type Session struct {
	mgr *Manager

	mu   sync.Mutex
	done map[string]bool
}

// NewSession returns a Session backed by mgr. A nil mgr disables backups.
func NewSession(mgr *Manager) *Session {
	return &Session{mgr: mgr, done: make(map[string]bool)}
}

// EnsureBackedUp backs up files for ide unless that already happened in
// this session. A failed backup is not recorded so the next call retries.
func (s *Session) EnsureBackedUp(ide string, files []string) (*Manifest, error) {
	if s == nil || s.mgr == nil || len(files) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done[ide] {
		return nil, nil
	}

	manifest, err := s.mgr.Backup(ide, files)
	if err != nil {
		return nil, errors.Wrapf(err, "creating backup for %s", ide)
	}
	s.done[ide] = true
	return manifest, nil
}
