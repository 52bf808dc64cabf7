package record_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/hwtest"
	"github.com/db47h/secmem/internal/record"
)

func open(t *testing.T) *record.Recorder {
	t.Helper()
	r, err := record.Open(filepath.Join(t.TempDir(), "runs.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecorder_bench(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	require.NoError(t, err)
	b, err := hwtest.NewBench(d, 0)
	require.NoError(t, err)
	defer b.Close()

	r := open(t)
	id, err := r.Begin(d)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	b.OnCheck = r.Check
	s := b.Run()
	require.NoError(t, r.Finish(s))

	runs, err := r.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 16, runs[0].Words)
	assert.Equal(t, 4, runs[0].Width)
	assert.Equal(t, 2, runs[0].Mux)
	assert.Equal(t, 48, runs[0].Checks)
	assert.Equal(t, hwtest.Summary{Pass: 44, ErrPass: 4}, runs[0].Summary)

	fails, err := r.Failures(id)
	require.NoError(t, err)
	assert.Empty(t, fails)
}

func TestRecorder_failures(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	require.NoError(t, err)
	r := open(t)

	id, err := r.Begin(d)
	require.NoError(t, err)
	r.Check(hwtest.Check{Phase: 2, Addr: 1, Want: secmem.BitsOf(0xB, 4), Got: secmem.BitsOf(0xB, 4), Pass: true})
	r.Check(hwtest.Check{Phase: 4, Addr: 0x1c, Expect: hwtest.ExpectFlagged, Got: secmem.BitsOf(0x3, 4)})
	require.NoError(t, r.Finish(hwtest.Summary{Pass: 1, ErrFail: 1}))

	fails, err := r.Failures(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"phase 4, addr 0x1c, error flagged, want 0x0, got 0x3, err 0"}, fails)
}

func TestRecorder_runs(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	require.NoError(t, err)
	r := open(t)

	// checks outside of a run are dropped
	r.Check(hwtest.Check{Phase: 2})
	assert.EqualError(t, r.Finish(hwtest.Summary{}), "no run in progress")

	id1, err := r.Begin(d)
	require.NoError(t, err)
	r.Check(hwtest.Check{Phase: 2, Pass: true})
	require.NoError(t, r.Finish(hwtest.Summary{Pass: 1}))

	// an unfinished run is not listed
	_, err = r.Begin(d)
	require.NoError(t, err)
	r.Check(hwtest.Check{Phase: 2, Pass: true})
	require.NoError(t, r.Flush())

	runs, err := r.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id1, runs[0].ID)
	assert.Equal(t, 1, runs[0].Checks)
}

func TestRecorder_batchError(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	require.NoError(t, err)
	r := open(t)
	record.SetBatchSize(r, 1)

	_, err = r.Begin(d)
	require.NoError(t, err)
	_, err = record.DB(r).Exec("DROP TABLE checks")
	require.NoError(t, err)
	r.Check(hwtest.Check{Phase: 2, Addr: 1, Want: secmem.BitsOf(0xB, 4), Got: secmem.BitsOf(0xB, 4), Pass: true})

	// the batch write failed; restoring the table lets the pending check
	// through, but the run still reports the lost write.
	_, err = record.DB(r).Exec(record.Schema)
	require.NoError(t, err)
	err = r.Finish(hwtest.Summary{Pass: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")

	runs, err := r.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecorder_closed(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	require.NoError(t, err)
	r, err := record.Open(filepath.Join(t.TempDir(), "runs.sqlite3"))
	require.NoError(t, err)

	_, err = r.Begin(d)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// exit handlers and late checks must not touch the closed database
	r.Check(hwtest.Check{Phase: 2, Addr: 0, Pass: true})
	assert.NoError(t, r.Flush())
	assert.NoError(t, r.Close())
}
