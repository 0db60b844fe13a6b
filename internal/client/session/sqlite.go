package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/guia-app/guia/internal/client/migrations"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/repositories/kv"
	"github.com/guia-app/guia/internal/dbx"
	"github.com/guia-app/guia/internal/filex"
	"github.com/guia-app/guia/internal/logging"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the session in the kv table of a local SQLite file.
// Every operation is serialized and runs in a single transaction.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at dsn and migrates it.
// A plain file path may start with "~/"; its directory is created.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		path, err := filex.ExpandHome(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve session db path: %w", err)
		}
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("failed to create session db directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLiteStore(db, logger), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB, logger logging.Logger) *SQLiteStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SQLiteStore{db: db, logger: logger}
}

func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values map[string][]byte
	err := dbx.ReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		values, err = kv.NewSQLiteRepository(tx).GetMany(ctx, Keys...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if len(values) == 0 {
		return nil, nil
	}

	snap, complete := decodeSnapshot(values)
	if complete {
		return snap, nil
	}

	s.logger.Warn(ctx, "discarding incomplete stored session", "keys_present", len(values))
	if err := s.clear(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *SQLiteStore) Save(ctx context.Context, creds models.Credentials, user *models.User) error {
	if err := checkSave(creds, user); err != nil {
		return err
	}
	rawUser, err := encodeUser(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, []byte(creds.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyRefreshToken, []byte(creds.RefreshToken)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, rawUser)
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidSession
	}
	rawUser, err := encodeUser(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		token, err := repo.Get(ctx, KeyToken)
		if err != nil {
			return err
		}
		if len(token) == 0 {
			return ErrNoSession
		}
		return repo.Set(ctx, KeyUser, rawUser)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx)
}

func (s *SQLiteStore) clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return kv.NewSQLiteRepository(tx).Delete(ctx, Keys...)
	})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
