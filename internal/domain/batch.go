package domain

// MaxBatchSize caps how many questions a single batch request may ask for.
const MaxBatchSize = 50

// BatchRequest asks a question source for up to Count records whose words
// are not in Exclude.
type BatchRequest struct {
	Count   int      `json:"count"   validate:"required,gte=1,lte=50"`
	Exclude []string `json:"exclude" validate:"omitempty,dive,required"`
}

// BatchResponse is one page of review questions plus pagination metadata.
// TotalAvailable is advisory and only meant for display.
type BatchResponse struct {
	Questions      []QuestionRecord `json:"questions"`
	HasMore        bool             `json:"has_more"`
	TotalAvailable int              `json:"total_available"`
}
