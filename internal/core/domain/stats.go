package domain

// RunStats holds end-of-run counters. They are reporting only.
// NoURL rows are also counted in Failed.
type RunStats struct {
	Success        int `json:"success"`
	Failed         int `json:"failed"`
	NoURL          int `json:"skipped_no_url"`
	Resumed        int `json:"resumed"`
	OutOfPartition int `json:"out_of_partition"`
}

// Processed is the number of rows that produced an outcome in this run.
func (s RunStats) Processed() int {
	return s.Success + s.Failed
}
