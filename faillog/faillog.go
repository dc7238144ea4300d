// Пакет faillog хранит невыровненные словоформы в SQLite, чтобы таблицу
// исключений можно было пополнять по самым частым остаткам.
package faillog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/steosofficial/hanalprep/align"
	"github.com/steosofficial/hanalprep/sejong"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS failures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	raw TEXT NOT NULL,
	morphs TEXT NOT NULL,
	residual_key TEXT NOT NULL,
	reason TEXT NOT NULL,
	forward TEXT NOT NULL,
	backward TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_failures_key ON failures(residual_key);
CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run_id);
`

// Store - журнал ошибок выравнивания.
type Store struct {
	db *sql.DB
}

// ResidualCount - остаток и сколько раз он встретился.
type ResidualCount struct {
	Key     string
	Count   int
	Example string // Одна из словоформ с этим остатком.
}

// Open открывает (или создает) базу по пути path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога журнала: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия журнала: %w", err)
	}
	// SQLite не любит параллельных писателей.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания схемы журнала: %w", err)
	}
	return &Store{db: db}, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRun регистрирует новый прогон и возвращает его идентификатор.
func (s *Store) NewRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, started_at) VALUES (?, ?)`, id, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("ошибка регистрации прогона: %w", err)
	}
	return id, nil
}

// Record сохраняет ошибку выравнивания.
func (s *Store) Record(ctx context.Context, runID string, failure *align.Error) error {
	forward, err := json.Marshal(failure.Forward)
	if err != nil {
		return fmt.Errorf("ошибка сериализации прямых пар: %w", err)
	}
	backward, err := json.Marshal(failure.Backward)
	if err != nil {
		return fmt.Errorf("ошибка сериализации обратных пар: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO failures (run_id, raw, morphs, residual_key, reason, forward, backward)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, failure.Word.Raw, sejong.JoinMorphs(failure.Word.Morphs), failure.ResidualKey(),
		failure.Reason, string(forward), string(backward),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал: %w", err)
	}
	return nil
}

// TopResiduals возвращает самые частые остатки по всем прогонам.
func (s *Store) TopResiduals(ctx context.Context, limit int) ([]ResidualCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT residual_key, COUNT(*) AS cnt, MIN(raw)
		FROM failures
		GROUP BY residual_key
		ORDER BY cnt DESC, residual_key ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к журналу: %w", err)
	}
	defer rows.Close()

	var result []ResidualCount
	for rows.Next() {
		var rc ResidualCount
		if err := rows.Scan(&rc.Key, &rc.Count, &rc.Example); err != nil {
			return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

// RunFailures - число ошибок в прогоне.
func (s *Store) RunFailures(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failures WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка запроса к журналу: %w", err)
	}
	return n, nil
}
