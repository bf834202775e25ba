// Package audit implements the court-admissible audit trail: one
// append-only NDJSON file per session plus an in-memory buffer so the
// /audit and /export endpoints can serve the current session without a
// re-read from disk. The shape is grounded on the teacher's
// TimelineService/InteractionService — a typed service wrapping a record
// store — generalized to a scoped file handle since spec.md names a flat
// file layout (<log_dir>/session_<id>.jsonl), not a database table.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// Logger appends AuditRecords to a per-session NDJSON file and keeps an
// in-memory copy of every record for fast reads; the buffer is not
// bounded or trimmed. One Logger instance is shared
// across the whole process; each session's file handle and buffer are
// created lazily on first use and protected by their own mutex, mirroring
// the teacher's SubAgentRunner.mu-guarded executions map.
type Logger struct {
	dir string

	mu       sync.Mutex
	sessions map[string]*sessionLog
}

type sessionLog struct {
	mu      sync.Mutex
	file    *os.File
	records []domain.AuditRecord
}

// New creates a Logger that writes under dir, creating dir if necessary.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errkind.Wrap(errkind.ErrInternal, fmt.Errorf("create audit log dir: %w", err))
	}
	return &Logger{dir: dir, sessions: make(map[string]*sessionLog)}, nil
}

func (l *Logger) sessionFor(sessionID string) (*sessionLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.sessions[sessionID]; ok {
		return s, nil
	}

	path := filepath.Join(l.dir, fmt.Sprintf("session_%s.jsonl", sessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrInternal, fmt.Errorf("open audit log: %w", err))
	}

	s := &sessionLog{file: f}
	l.sessions[sessionID] = s
	return s, nil
}

// Record appends rec to its session's in-memory buffer before attempting
// the disk write, and returns any write error to the caller. Callers that
// need the pipeline to tolerate partial audit-write failure (spec.md's
// requirement) should log the returned error and continue rather than
// abort the step — the in-memory buffer already has rec regardless of
// whether the disk write below succeeded.
func (l *Logger) Record(rec domain.AuditRecord) error {
	s, err := l.sessionFor(rec.SessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	line, err := json.Marshal(rec)
	if err != nil {
		return errkind.Wrap(errkind.ErrInternal, fmt.Errorf("marshal audit record: %w", err))
	}
	line = append(line, '\n')

	if _, err := s.file.Write(line); err != nil {
		return errkind.Wrap(errkind.ErrInternal, fmt.Errorf("write audit record: %w", err))
	}
	return nil
}

// Session returns the in-memory buffer for sessionID, in the order
// records were appended. Returns an empty slice (never nil) if the
// session has no records yet.
func (l *Logger) Session(sessionID string) []domain.AuditRecord {
	l.mu.Lock()
	s, ok := l.sessions[sessionID]
	l.mu.Unlock()
	if !ok {
		return []domain.AuditRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Close flushes and closes every open session file handle.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, s := range l.sessions {
		s.mu.Lock()
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.mu.Unlock()
	}
	return firstErr
}

// NewRecord builds an AuditRecord with Timestamp set to now, the one
// concession to not pre-stamping timestamps: callers never set this
// field themselves.
func NewRecord(sessionID string, step domain.PlanStep, status, detail string, data map[string]any) domain.AuditRecord {
	return domain.AuditRecord{
		SessionID: sessionID,
		Step:      step,
		Timestamp: time.Now(),
		Status:    status,
		Detail:    detail,
		Data:      data,
	}
}
