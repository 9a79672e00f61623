package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/config"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/store"
)

// nodeStorage is the storage a node runs on, opened from config.
type nodeStorage struct {
	cas     cas.Storage
	eav     eav.Storage
	log     *store.ActionLog
	history []action.Wrapper
	closers []func() error
}

// openStorage opens the backends named in cfg. With a SQLite content
// backend the action log is loaded so the node resumes where it stopped.
func openStorage(ctx context.Context, cfg config.StorageConfig) (*nodeStorage, error) {
	s := &nodeStorage{}

	var db *store.Store
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := store.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		db = st
		s.closers = append(s.closers, st.Close)
		s.cas = st.Content()
		s.log = st.Actions()
	default:
		s.cas = cas.NewMemoryStorage()
	}

	switch cfg.EAV() {
	case config.BackendSQLite:
		if db == nil {
			s.close()
			return nil, errors.New("sqlite EAV requires the sqlite content backend")
		}
		s.eav = db.EAV()
	case config.BackendRedis:
		r := eav.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, eav.WithPrefix(cfg.Redis.Prefix))
		s.closers = append(s.closers, r.Close)
		s.eav = r
	default:
		s.eav = eav.NewMemoryStorage()
	}

	if s.log != nil {
		history, err := s.log.Wrappers(ctx)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("load action log: %w", err)
		}
		s.history = history
	}
	return s, nil
}

func (s *nodeStorage) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openExisting opens a SQLite database that must already exist. store.Open
// would otherwise create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
