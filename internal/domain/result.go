package domain

// ProbeResult is the outcome of one probe run. When Success is false only
// Reason is meaningful.
type ProbeResult struct {
	Success     bool    `json:"success"`
	RecordCount int     `json:"record_count"`
	Sample      *Record `json:"sample,omitempty"` // first record, nil when none came back
	Reason      string  `json:"reason,omitempty"`
}

func Succeeded(records []Record) ProbeResult {
	res := ProbeResult{Success: true, RecordCount: len(records)}
	if len(records) > 0 {
		first := records[0]
		res.Sample = &first
	}
	return res
}

func Failed(reason string) ProbeResult {
	return ProbeResult{Reason: reason}
}
