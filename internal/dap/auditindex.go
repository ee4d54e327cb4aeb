// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// auditIndex is a queryable SQLite index alongside the JSONL audit log: the
// JSONL file remains the append-only source of truth, this gives indexed
// lookup by session or time range without re-parsing it.
type auditIndex struct {
	db *sql.DB
}

func openAuditIndex(dir string) (*auditIndex, error) {
	path := filepath.Join(dir, "audit_index.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dap: opening audit index: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts_ms INTEGER NOT NULL,
	session_id TEXT NOT NULL,
	direction TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_records(session_id);
CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_records(ts_ms);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dap: creating audit index schema: %w", err)
	}
	return &auditIndex{db: db}, nil
}

func (idx *auditIndex) insert(rec auditRecord) {
	if idx == nil || idx.db == nil {
		return
	}
	_, _ = idx.db.Exec(
		`INSERT INTO audit_records (ts_ms, session_id, direction, kind, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.TsMs, rec.SessionID, string(rec.Direction), string(rec.Kind), string(rec.Payload),
	)
}

// recordsBySession returns every indexed record for sessionID, ordered by
// timestamp.
func (idx *auditIndex) recordsBySession(sessionID string) ([]auditRecord, error) {
	if idx == nil || idx.db == nil {
		return nil, nil
	}
	rows, err := idx.db.Query(
		`SELECT ts_ms, session_id, direction, kind, payload FROM audit_records WHERE session_id = ? ORDER BY ts_ms`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("dap: querying audit index: %w", err)
	}
	defer rows.Close()

	var out []auditRecord
	for rows.Next() {
		var rec auditRecord
		var payload string
		if err := rows.Scan(&rec.TsMs, &rec.SessionID, &rec.Direction, &rec.Kind, &payload); err != nil {
			return nil, fmt.Errorf("dap: scanning audit index row: %w", err)
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (idx *auditIndex) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}
