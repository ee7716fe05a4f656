package domain

// ReviewState tells the review coordinator which action to offer.
type ReviewState string

const (
	ReviewUnavailable ReviewState = "unavailable"
	ReviewWritable    ReviewState = "writable"
	ReviewEditable    ReviewState = "editable"
)

// ReviewEligible reports whether a review may be written or edited for the
// order. Eligibility depends on status alone; whether a review exists only
// selects between writing and editing.
func ReviewEligible(status Status) bool {
	return status == StatusCompleted || status == StatusReturned
}

// ReviewStateFor derives the review availability for an order given a live
// lookup of whether a review was already filed.
func ReviewStateFor(status Status, hasExistingReview bool) ReviewState {
	if !ReviewEligible(status) {
		return ReviewUnavailable
	}
	if hasExistingReview {
		return ReviewEditable
	}
	return ReviewWritable
}

// ReportEligible reports whether the counterparty may be reported. It shares
// the review predicate: both unlock once the rental has concluded.
func ReportEligible(status Status) bool {
	return ReviewEligible(status)
}
