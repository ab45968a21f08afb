package rank

import "gigtracker-engine/internal/domain"

// ShortlistThreshold is the default cutoff for auto-shortlisting new jobs.
const ShortlistThreshold = 70

// StatusForScore returns SHORTLISTED when score reaches threshold, NEW otherwise.
func StatusForScore(score, threshold int) domain.JobStatus {
	if score >= threshold {
		return domain.StatusShortlisted
	}
	return domain.StatusNew
}
