package dto

// TimesheetRequest represents the payload to log or update a timesheet
type TimesheetRequest struct {
	TaskName  string   `json:"task_name"`
	Date      string   `json:"date"`
	Hours     *float64 `json:"hours"`
	ProjectID uint     `json:"project_id"`
}
