package hook

import (
	"bufio"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hakanisaksson/githook-seclog/internal/audit"
	"github.com/hakanisaksson/githook-seclog/internal/gitrepo"
)

// Runner drives one post-receive invocation: it reads ref-update
// triples from the push transport, classifies each, extracts file
// changes, and emits the resulting audit events batch by batch.
type Runner struct {
	inspector gitrepo.Inspector
	emitter   *audit.Emitter
	session   audit.SessionContext
	log       *logrus.Logger
}

func NewRunner(inspector gitrepo.Inspector, emitter *audit.Emitter, sess audit.SessionContext, log *logrus.Logger) *Runner {
	return &Runner{
		inspector: inspector,
		emitter:   emitter,
		session:   sess,
		log:       log,
	}
}

// Run processes ref-update lines from in until end-of-input, strictly
// in order. Malformed lines are skipped with a debug trace; revision
// lookups that fail degrade to empty results. Each ref-update's batch
// of records is flushed before the next line is read.
func (r *Runner) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		ref, err := gitrepo.ParseRefUpdate(line)
		if err != nil {
			r.log.WithField("line", line).Debug("skipping malformed ref-update")
			continue
		}

		cls := gitrepo.Classify(ref.OldRev, ref.NewRev)
		r.log.WithFields(logrus.Fields{
			"ref":  ref.RefName,
			"kind": cls.Kind.String(),
		}).Debug("processing ref-update")

		var diff gitrepo.DiffResult
		if cls.Kind != gitrepo.RefDeleted {
			diff = gitrepo.Extract(r.inspector, cls.Range)
		}

		events := audit.BuildEvents(ref, cls, diff)
		if err := r.emitter.Emit(r.session, events); err != nil {
			return err
		}
	}
	return scanner.Err()
}
