package domain

// Branch is a bank branch identified by its IFSC code.
type Branch struct {
	IFSC       string `json:"ifsc"`
	BranchName string `json:"branch_name"`
	State      string `json:"state"`
	Country    string `json:"country"`
	IsActive   bool   `json:"is_active"`
}

// BranchInput carries the editable branch metadata.
type BranchInput struct {
	BranchName string `json:"branch_name"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

func (b BranchInput) Validate() error {
	if b.BranchName == "" {
		return Invalid("branch name is required")
	}
	if len(b.BranchName) > 50 || len(b.State) > 50 || len(b.Country) > 50 {
		return Invalid("branch fields must be at most 50 characters")
	}
	return nil
}
