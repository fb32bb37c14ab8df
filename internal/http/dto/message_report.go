package dto

type ReportMessageRequest struct {
	ReportType  string `json:"report_type" form:"report_type" binding:"required"`
	Description string `json:"description" form:"description"`
}
