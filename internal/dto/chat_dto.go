package dto

type ChatQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

type ChatQueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}
