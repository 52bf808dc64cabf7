// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package record stores testbench runs in a SQLite database.
//
// Each run gets one row in table runs, keyed by a unique run id, and one row
// per checked read in table checks. Checks are buffered and written in batches.
// Buffered checks are flushed when the program exits through atexit.
package record

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/hwtest"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the database file used when none is given.
const DefaultPath = "secmem_runs.sqlite3"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        TEXT PRIMARY KEY,
	started   TEXT NOT NULL,
	words     INTEGER NOT NULL,
	width     INTEGER NOT NULL,
	mux       INTEGER NOT NULL,
	fault     INTEGER NOT NULL,
	ecc       INTEGER NOT NULL,
	wf        INTEGER NOT NULL,
	rd        INTEGER NOT NULL,
	pass      INTEGER,
	fail      INTEGER,
	err_pass  INTEGER,
	err_fail  INTEGER,
	result    TEXT
);
CREATE TABLE IF NOT EXISTS checks (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	seq     INTEGER NOT NULL,
	phase   INTEGER NOT NULL,
	addr    INTEGER NOT NULL,
	expect  TEXT NOT NULL,
	want    TEXT NOT NULL,
	got     TEXT NOT NULL,
	err     INTEGER NOT NULL,
	pass    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS checks_run ON checks(run_id);
`

// Recorder writes testbench runs to a database.
type Recorder struct {
	db        *sql.DB
	batchSize int

	mu      sync.Mutex
	run     string
	seq     int
	pending []hwtest.Check
	err     error // first flush error of the current run
	closed  bool
	exit    atexit.HandlerID
}

// Open opens or creates the database at path and returns a Recorder for it.
// If path is empty, DefaultPath is used.
func Open(path string) (*Recorder, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating tables in %s", path)
	}
	r := &Recorder{db: db, batchSize: 1024}
	r.exit = atexit.Register(func() { r.Flush() })
	return r, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Begin starts a new run for design d and returns its id. Checks recorded
// afterwards belong to this run.
func (r *Recorder) Begin(d *secmem.Design) (string, error) {
	if err := r.Flush(); err != nil {
		return "", err
	}
	id := xid.New().String()
	_, err := r.db.Exec(`INSERT INTO runs (id, started, words, width, mux, fault, ecc, wf, rd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339),
		d.Words, d.WordWidth, d.Mux, d.FaultWidth,
		b2i(d.Config.ECC), b2i(d.WriteFailure.Enabled), b2i(d.ReadDisturb.Enabled))
	if err != nil {
		return "", errors.Wrap(err, "recording run")
	}
	r.mu.Lock()
	r.run, r.seq, r.err = id, 0, nil
	r.mu.Unlock()
	return id, nil
}

// Check buffers one checked read of the current run. It is a no-op if no run
// was started or if r is closed. A failed batch write is reported by Finish.
func (r *Recorder) Check(c hwtest.Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == "" || r.closed {
		return
	}
	r.pending = append(r.pending, c)
	if len(r.pending) >= r.batchSize {
		if err := r.flush(); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Flush writes buffered checks to the database in a single transaction. It
// does nothing once r is closed. Checks stay buffered if the write fails.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.flush()
}

func (r *Recorder) flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	seq := r.seq
	defer func() {
		if len(r.pending) > 0 {
			r.seq = seq
		}
	}()
	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "flushing checks")
	}
	stmt, err := tx.Prepare(`INSERT INTO checks (run_id, seq, phase, addr, expect, want, got, err, pass)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "flushing checks")
	}
	defer stmt.Close()
	for _, c := range r.pending {
		_, err = stmt.Exec(r.run, r.seq, c.Phase, c.Addr, c.Expect.String(),
			c.Want.Hex(), c.Got.Hex(), b2i(c.Err), b2i(c.Pass))
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "recording check %d", r.seq)
		}
		r.seq++
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "flushing checks")
	}
	r.pending = r.pending[:0]
	return nil
}

// Finish flushes pending checks and stores the summary of the current run. If
// any batch of checks failed to be written, the run is left unfinished and
// the first such error is returned.
func (r *Recorder) Finish(s hwtest.Summary) error {
	if err := r.Flush(); err != nil {
		return err
	}
	r.mu.Lock()
	id, ferr := r.run, r.err
	r.run, r.err = "", nil
	r.mu.Unlock()
	if id == "" {
		return errors.New("no run in progress")
	}
	if ferr != nil {
		return ferr
	}
	_, err := r.db.Exec(`UPDATE runs SET pass = ?, fail = ?, err_pass = ?, err_fail = ?, result = ? WHERE id = ?`,
		s.Pass, s.Fail, s.ErrPass, s.ErrFail, s.Result(), id)
	return errors.Wrap(err, "recording summary")
}

// Run is a recorded testbench run.
type Run struct {
	ID     string
	Words  int
	Width  int
	Mux    int
	Checks int
	hwtest.Summary
}

// Runs returns all completed runs, oldest first.
func (r *Recorder) Runs() ([]Run, error) {
	rows, err := r.db.Query(`SELECT r.id, r.words, r.width, r.mux, r.pass, r.fail, r.err_pass, r.err_fail,
			(SELECT COUNT(*) FROM checks c WHERE c.run_id = r.id)
		FROM runs r WHERE r.result IS NOT NULL ORDER BY r.started, r.id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var u Run
		if err = rows.Scan(&u.ID, &u.Words, &u.Width, &u.Mux,
			&u.Pass, &u.Fail, &u.ErrPass, &u.ErrFail, &u.Checks); err != nil {
			return nil, errors.Wrap(err, "listing runs")
		}
		runs = append(runs, u)
	}
	return runs, errors.Wrap(rows.Err(), "listing runs")
}

// Failures returns a description of every failed check of run id.
func (r *Recorder) Failures(id string) ([]string, error) {
	rows, err := r.db.Query(`SELECT phase, addr, expect, want, got, err FROM checks
		WHERE run_id = ? AND pass = 0 ORDER BY seq`, id)
	if err != nil {
		return nil, errors.Wrap(err, "listing failures")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var (
			phase, addr, e int
			exp, want, got string
		)
		if err = rows.Scan(&phase, &addr, &exp, &want, &got, &e); err != nil {
			return nil, errors.Wrap(err, "listing failures")
		}
		out = append(out, fmt.Sprintf("phase %d, addr 0x%x, %s, want 0x%s, got 0x%s, err %d",
			phase, addr, exp, want, got, e))
	}
	return out, errors.Wrap(rows.Err(), "listing failures")
}

// Close flushes pending checks and closes the database. It returns the first
// error met while writing checks of an unfinished run. Closing a closed
// Recorder does nothing.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.exit.Cancel()
	ferr := r.flush()
	if r.err != nil {
		ferr = r.err
	}
	if err := r.db.Close(); err != nil {
		return errors.Wrap(err, "closing database")
	}
	return ferr
}
