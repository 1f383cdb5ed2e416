package models

// ResultStatus classifies the outcome of a lifecycle operation that does not
// return a record.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	// ResultWarning marks a no-op on a record that was already in the target state.
	ResultWarning ResultStatus = "warning"
	// ResultInfo marks a no-op that the caller may safely ignore.
	ResultInfo ResultStatus = "info"
)

// StatusResult is returned by soft delete, restore and hard delete.
type StatusResult struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`
}

// Changed reports whether the operation modified the record.
func (r StatusResult) Changed() bool {
	return r.Status == ResultSuccess
}
