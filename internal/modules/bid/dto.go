package bid

type SubmitBidRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Message  string  `json:"message" binding:"required"`
	Timeline string  `json:"timeline" binding:"required"`
}

type ResubmitBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
