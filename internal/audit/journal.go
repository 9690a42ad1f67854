package audit

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hakanisaksson/githook-seclog/pkg/errors"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	logged_at TEXT NOT NULL,
	user      TEXT NOT NULL,
	client_ip TEXT NOT NULL,
	repo      TEXT NOT NULL,
	host      TEXT NOT NULL,
	commit_id TEXT NOT NULL,
	author    TEXT NOT NULL,
	action    TEXT NOT NULL,
	file      TEXT NOT NULL
);
`

// JournalRecord is one row of the audit journal.
type JournalRecord struct {
	LoggedAt string
	User     string
	ClientIP string
	Repo     string
	Host     string
	Commit   string
	Author   string
	Action   string
	File     string
}

// JournalSink writes each record as a row in a SQLite database so the
// audit trail is queryable without parsing log lines. One transaction
// per ref-update batch.
type JournalSink struct {
	db *sql.DB
}

func NewJournalSink(path string) (*JournalSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed,
			fmt.Sprintf("failed to open journal %s", path))
	}
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed,
			"failed to initialize journal schema")
	}
	return &JournalSink{db: db}, nil
}

func (s *JournalSink) Emit(sess SessionContext, events []Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeJournalFailed,
			"failed to begin journal transaction")
	}

	stmt, err := tx.Prepare(`INSERT INTO audit_log
		(logged_at, user, client_ip, repo, host, commit_id, author, action, file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.ErrCodeJournalFailed,
			"failed to prepare journal insert")
	}
	defer stmt.Close()

	loggedAt := sess.Time.Format(TimeLayout)
	for _, ev := range events {
		if _, err := stmt.Exec(loggedAt, sess.User, sess.ClientIP, sess.RepoPath,
			sess.Host, ev.Commit, ev.Author, string(ev.Action), ev.File); err != nil {
			tx.Rollback()
			return errors.Wrap(err, errors.ErrCodeJournalFailed,
				"failed to insert journal record")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeJournalFailed,
			"failed to commit journal transaction")
	}
	return nil
}

func (s *JournalSink) Close() error {
	return s.db.Close()
}

// RecentRecords returns up to limit journal rows, newest first. Used
// by the report command.
func RecentRecords(path string, limit int) ([]JournalRecord, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed,
			fmt.Sprintf("failed to open journal %s", path))
	}
	defer db.Close()

	rows, err := db.Query(`SELECT logged_at, user, client_ip, repo, host,
		commit_id, author, action, file
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeJournalFailed,
			"failed to query journal")
	}
	defer rows.Close()

	var records []JournalRecord
	for rows.Next() {
		var r JournalRecord
		if err := rows.Scan(&r.LoggedAt, &r.User, &r.ClientIP, &r.Repo, &r.Host,
			&r.Commit, &r.Author, &r.Action, &r.File); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeJournalFailed,
				"failed to scan journal record")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
