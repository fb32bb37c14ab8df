package model

type ReportType string

const (
	ReportTypeSpam          ReportType = "spam"
	ReportTypeHarassment    ReportType = "harassment"
	ReportTypeInappropriate ReportType = "inappropriate"
	ReportTypeNorms         ReportType = "norms"
	ReportTypeOther         ReportType = "other"
)

func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeSpam, ReportTypeHarassment, ReportTypeInappropriate, ReportTypeNorms, ReportTypeOther:
		return true
	}
	return false
}
