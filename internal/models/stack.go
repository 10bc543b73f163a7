package models

// StackPeptide is one entry of a stack template.
type StackPeptide struct {
	PeptideID string `json:"peptideId"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Duration  string `json:"duration"`
	Timing    string `json:"timing"`
}

// StackTemplate is a generated peptide bundle for a category and tier.
type StackTemplate struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Goals         []string        `json:"goals"`
	Peptides      []StackPeptide  `json:"peptides"`
	EstimatedCost float64         `json:"estimatedCost"`
	Difficulty    StackDifficulty `json:"difficulty"`
}

// StackEstimate is the cost of a user-assembled stack.
type StackEstimate struct {
	Peptides      []StackPeptide `json:"peptides"`
	EstimatedCost float64        `json:"estimatedCost"`
	UnknownIDs    []string       `json:"unknownIds,omitempty"`
}
