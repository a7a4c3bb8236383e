// internal/transition/graph.go
package transition

import "admission-engine/internal/models"

// transitionGraph is the single source of truth for allowed status
// edges. Terminal statuses have no outgoing edges.
var transitionGraph = map[models.Status][]models.Status{
	models.StatusPending: {
		models.StatusUnderReview,
		models.StatusDocumentsRequested,
		models.StatusRejected,
	},
	models.StatusDocumentsRequested: {
		models.StatusUnderReview,
		models.StatusPending,
		models.StatusRejected,
	},
	models.StatusUnderReview: {
		models.StatusInterviewScheduled,
		models.StatusDocumentsRequested,
		models.StatusRejected,
	},
	models.StatusInterviewScheduled: {
		models.StatusExamScheduled,
		models.StatusDocumentsRequested,
		models.StatusRejected,
		models.StatusWaitlist,
	},
	models.StatusExamScheduled: {
		models.StatusApproved,
		models.StatusRejected,
		models.StatusWaitlist,
		models.StatusDocumentsRequested,
	},
	models.StatusApproved: {},
	models.StatusRejected: {},
	models.StatusWaitlist: {},
}

// severity orders statuses by pipeline progress. Moves to a lower rank
// are backward and rejected unless the target is DOCUMENTS_REQUESTED.
// DOCUMENTS_REQUESTED shares rank 1 with PENDING so the
// DOCUMENTS_REQUESTED -> PENDING edge counts as lateral, not backward.
var severity = map[models.Status]int{
	models.StatusPending:            1,
	models.StatusDocumentsRequested: 1,
	models.StatusUnderReview:        2,
	models.StatusInterviewScheduled: 3,
	models.StatusExamScheduled:      4,
	models.StatusApproved:           5,
	models.StatusRejected:           5,
	models.StatusWaitlist:           5,
}

// ValidTransitions returns the statuses reachable from the given status
// in one step. The returned slice is a copy.
func ValidTransitions(from models.Status) []models.Status {
	edges, ok := transitionGraph[from]
	if !ok {
		return nil
	}
	out := make([]models.Status, len(edges))
	copy(out, edges)
	return out
}

// graphAllows reports whether the edge (from, to) exists.
func graphAllows(from, to models.Status) bool {
	for _, next := range transitionGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// isBackward reports whether moving from -> to loses pipeline progress.
func isBackward(from, to models.Status) bool {
	return severity[to] < severity[from]
}
