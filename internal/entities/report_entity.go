package entities

// WorkloadReportItem is one row of the counselor workload report.
type WorkloadReportItem struct {
	CounselorID    string
	FullName       string
	HomeRegion     string
	Rating         float64
	ActiveRequests int
	TotalCases     int
	CompletedCases int
}

// ReportFilter narrows the workload report.
type ReportFilter struct {
	Region string
	Limit  int
	Offset int
}
