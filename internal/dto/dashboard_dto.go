package dto

// DashboardExamEntry is one graded exam in the student dashboard.
type DashboardExamEntry struct {
	ExamID     uint   `json:"exam_id"`
	Title      string `json:"title"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
	Percentage int    `json:"percentage"`
	Grade      string `json:"grade"`
}

// StudentDashboardResponse aggregates a student's standing.
type StudentDashboardResponse struct {
	EnrolledCourses []CourseLite         `json:"enrolled_courses"`
	ExamResults     []DashboardExamEntry `json:"exam_results"`
	PendingPayments int                  `json:"pending_payments"`
	AverageScore    float64              `json:"average_score"`
	CacheHit        bool                 `json:"-"`
}
