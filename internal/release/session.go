package release

// Stage identifies a completed step of the release pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageLocated         Stage = "located"
	StageTransplanted    Stage = "transplanted"
	StagePatched         Stage = "patched"
	StageManifestUpdated Stage = "manifest_updated"
	StageStagedForCommit Stage = "staged_for_commit"
	StagePublished       Stage = "published"
)

// Session records the observable progress of one release run.
//
// Stages appear in completion order; a failed run carries every stage that
// finished before the failure. Written paths reflect the final state of the
// target repository, after patch deletions.
type Session struct {
	CompletedStages  []Stage
	WrittenFilePaths []string
	ManifestPath     string
	TrackingID       string
}

// Advance appends a completed stage to the session.
func (session *Session) Advance(stage Stage) {
	session.CompletedStages = append(session.CompletedStages, stage)
}

// Completed reports whether the named stage finished during this run.
func (session *Session) Completed(stage Stage) bool {
	for _, completedStage := range session.CompletedStages {
		if completedStage == stage {
			return true
		}
	}
	return false
}
