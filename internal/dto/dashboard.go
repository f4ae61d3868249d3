package dto

import "time"

// CountBucket is one labelled slice of a summary breakdown.
type CountBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardSummary is the aggregate view shown on the dashboard home page.
type DashboardSummary struct {
	TotalStudents        int           `json:"totalStudents"`
	TotalDepartments     int           `json:"totalDepartments"`
	TotalFaculty         int           `json:"totalFaculty"`
	StudentsByGrade      []CountBucket `json:"studentsByGrade"`
	StudentsByDepartment []CountBucket `json:"studentsByDepartment"`
	GeneratedAt          time.Time     `json:"generatedAt"`
}
