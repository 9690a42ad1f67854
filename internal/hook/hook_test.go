package hook

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakanisaksson/githook-seclog/internal/audit"
	"github.com/hakanisaksson/githook-seclog/internal/gitrepo"
	"github.com/hakanisaksson/githook-seclog/pkg/models"
)

const (
	oldRev = "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b"
	newRev = "feedfacefeedfacefeedfacefeedfacefeedface"
)

// fakeInspector satisfies gitrepo.Inspector with canned responses.
type fakeInspector struct {
	author    string
	short     string
	changes   []gitrepo.Change
	metaErr   error
	diffErr   error
	diffCalls int
}

func (f *fakeInspector) CommitMeta(rev string) (string, string, error) {
	if f.metaErr != nil {
		return "", "", f.metaErr
	}
	return f.author, f.short, nil
}

func (f *fakeInspector) DiffNameStatus(rng gitrepo.RevRange) ([]gitrepo.Change, error) {
	f.diffCalls++
	if f.diffErr != nil {
		return nil, f.diffErr
	}
	return f.changes, nil
}

// captureSink records every emitted batch.
type captureSink struct {
	batches [][]audit.Event
}

func (c *captureSink) Emit(sess audit.SessionContext, events []audit.Event) error {
	batch := make([]audit.Event, len(events))
	copy(batch, events)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureSink) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRunner(ins gitrepo.Inspector, sink audit.Sink) *Runner {
	sess := audit.SessionContext{User: "jane", ClientIP: "10.0.0.5", RepoPath: "/srv/git/project.git"}
	return NewRunner(ins, audit.NewEmitter(sink), sess, quietLogger())
}

func TestRunBranchCreation(t *testing.T) {
	ins := &fakeInspector{
		author:  "Jane Dev",
		short:   "feedfac",
		changes: []gitrepo.Change{{Kind: 'A', Path: "readme.md"}},
	}
	sink := &captureSink{}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("%s %s refs/heads/main\n", gitrepo.ZeroRev, newRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	require.Len(t, sink.batches, 1)
	events := sink.batches[0]
	require.Len(t, events, 2)

	assert.Equal(t, audit.Event{Action: audit.ActionCreated, File: "refs/heads/main"}, events[0])
	assert.Equal(t, audit.Event{Action: audit.ActionAdded, File: "readme.md", Commit: "feedfac", Author: "Jane Dev"}, events[1])
}

func TestRunBranchDeletionSkipsDiff(t *testing.T) {
	ins := &fakeInspector{}
	sink := &captureSink{}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("%s %s refs/heads/old\n", oldRev, gitrepo.ZeroRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, audit.Event{Action: audit.ActionRemoved, File: "refs/heads/old"}, sink.batches[0][0])
	assert.Zero(t, ins.diffCalls)
}

func TestRunMultipleRefUpdatesInOrder(t *testing.T) {
	ins := &fakeInspector{
		author:  "Jane Dev",
		short:   "feedfac",
		changes: []gitrepo.Change{{Kind: 'M', Path: "foo.txt"}},
	}
	sink := &captureSink{}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("%s %s refs/heads/main\n%s %s refs/heads/old\n",
		oldRev, newRev, oldRev, gitrepo.ZeroRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	// One batch per ref-update, in input order.
	require.Len(t, sink.batches, 2)
	assert.Equal(t, audit.ActionModified, sink.batches[0][0].Action)
	assert.Equal(t, audit.ActionRemoved, sink.batches[1][0].Action)
}

func TestRunSkipsMalformedLines(t *testing.T) {
	ins := &fakeInspector{changes: []gitrepo.Change{{Kind: 'M', Path: "foo.txt"}}}
	sink := &captureSink{}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("garbage\n\n%s %s refs/heads/main\n", oldRev, newRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	assert.Len(t, sink.batches, 1)
}

func TestRunDegradesOnInspectorFailure(t *testing.T) {
	ins := &fakeInspector{
		metaErr: fmt.Errorf("object not found"),
		diffErr: fmt.Errorf("object not found"),
	}
	sink := &captureSink{}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("%s %s refs/heads/main\n", gitrepo.ZeroRev, newRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	// The ref-level event is still recorded with empty metadata.
	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, audit.ActionCreated, sink.batches[0][0].Action)
}

func TestRunEmptyInput(t *testing.T) {
	sink := &captureSink{}
	runner := newTestRunner(&fakeInspector{}, sink)

	require.NoError(t, runner.Run(strings.NewReader("")))
	assert.Empty(t, sink.batches)
}

// formatSink renders each event the way the file sink would, so the
// end-to-end line shape can be asserted.
type formatSink struct {
	formatter *audit.Formatter
	lines     []string
}

func (s *formatSink) Emit(sess audit.SessionContext, events []audit.Event) error {
	for _, ev := range events {
		s.lines = append(s.lines, s.formatter.FormatLine(sess, ev))
	}
	return nil
}

func (s *formatSink) Close() error { return nil }

func TestRunEndToEndLineFormat(t *testing.T) {
	ins := &fakeInspector{
		author:  "Jane Dev",
		short:   "1a2b3c4",
		changes: []gitrepo.Change{{Kind: 'A', Path: "readme.md"}},
	}
	formatter := audit.NewFormatter(models.Default())
	sink := &formatSink{formatter: formatter}
	runner := newTestRunner(ins, sink)

	input := fmt.Sprintf("%s %s refs/heads/main\n", gitrepo.ZeroRev, newRev)
	require.NoError(t, runner.Run(strings.NewReader(input)))

	require.Len(t, sink.lines, 2)
	assert.True(t, strings.HasSuffix(sink.lines[0], ", , ,CREATED,refs/heads/main"), sink.lines[0])
	assert.True(t, strings.HasSuffix(sink.lines[1], ",1a2b3c4,Jane Dev,ADDED,readme.md"), sink.lines[1])
	for _, line := range sink.lines {
		assert.Len(t, strings.Split(line, ","), formatter.FieldCount())
	}
}
