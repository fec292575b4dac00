package domain

// SubmissionResult is the outcome of one submit attempt.
type SubmissionResult struct {
	Success bool   `json:"success"`
	Address string `json:"address"`
	Hash    string `json:"hash,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Succeeded(address, hash string) SubmissionResult {
	return SubmissionResult{Success: true, Address: address, Hash: hash}
}

func Failed(address, message string) SubmissionResult {
	return SubmissionResult{Success: false, Address: address, Error: message}
}
