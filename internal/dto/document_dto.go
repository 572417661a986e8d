package dto

type UploadDocumentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}
