package config

// Redis key and channel builders. Centralized so the store, services and
// any future tooling agree on the naming scheme.

// RefreshSessionKey keys a refresh-token session by its JTI.
func RefreshSessionKey(jti string) string {
	return "refresh:" + jti
}

// ExamPaperKey keys the cached student paper of an active exam.
func ExamPaperKey(examID string) string {
	return "exam:" + examID + ":paper"
}

// ExamMonitorChannel names the pub/sub channel carrying an exam's
// monitor events.
func ExamMonitorChannel(examID string) string {
	return "exam:" + examID + ":monitor"
}
