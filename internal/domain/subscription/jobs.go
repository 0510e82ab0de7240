package subscription

// JobRecomputeSeats recounts active employees of one company.
const JobRecomputeSeats = "billing.recompute_seats"

type RecomputeSeatsPayload struct {
	CompanyID string `json:"company_id"`
}
