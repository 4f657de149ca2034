package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/amishk599/jobdigest/internal/model"
)

// Merge concatenates previous and fresh listings, keeping the first listing
// seen for each job ID (or full link when no ID is present). Listings whose
// job ID is in excluded are dropped. excluded may be nil.
func Merge(previous, fresh []model.Job, excluded mapset.Set[string]) []model.Job {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]model.Job, 0, len(previous)+len(fresh))

	for _, batch := range [][]model.Job{previous, fresh} {
		for _, job := range batch {
			if id, ok := model.JobID(job.URL); ok && excluded != nil && excluded.Contains(id) {
				continue
			}
			if !seen.Add(model.DedupKey(job.URL)) {
				continue
			}
			out = append(out, job)
		}
	}
	return out
}
