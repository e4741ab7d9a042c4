package models

// DashboardStats are the KPIs computed from the processed artifact.
type DashboardStats struct {
	MovieCount   int             `json:"movie_count"`
	AverageROI   float64         `json:"average_roi"`
	BestROI      *ProcessedMovie `json:"best_roi,omitempty"`
	HighestGross *ProcessedMovie `json:"highest_gross,omitempty"`
}
