package entity

// RowError records one failed row of an import batch.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult is the outcome of one row-isolated import batch. Succeeded
// holds the new document identifiers in input order.
type ImportResult struct {
	BatchID   string     `json:"batch_id"`
	Succeeded []string   `json:"succeeded"`
	Failed    []RowError `json:"failed"`
}
