package audit

import "github.com/hakanisaksson/githook-seclog/internal/gitrepo"

// BuildEvents maps one classified ref update plus its diff result into
// the ordered event list to emit. The ref-level event, when present,
// precedes the file-level events; file-level events keep the diff
// extractor's ordering and share the range's author and short commit.
func BuildEvents(ref gitrepo.RefUpdate, cls gitrepo.Classification, diff gitrepo.DiffResult) []Event {
	if cls.Kind == gitrepo.RefDeleted {
		return []Event{{Action: ActionRemoved, File: ref.RefName}}
	}

	var events []Event
	if cls.Kind == gitrepo.RefCreated {
		events = append(events, Event{Action: ActionCreated, File: ref.RefName})
	}

	for _, ch := range diff.Changes {
		events = append(events, Event{
			Action: ActionForCode(ch.Kind),
			File:   ch.Path,
			Commit: diff.ShortCommit,
			Author: diff.Author,
		})
	}
	return events
}
