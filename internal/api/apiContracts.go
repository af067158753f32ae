package api

type ChatRequest struct {
	Query string `json:"query" validate:"required" example:"what does the contract say about termination?"`
	TopK  int    `json:"top_k,omitempty" example:"5"`
}

type Source struct {
	FileName string  `json:"file_name" example:"contract.pdf"`
	Page     int     `json:"page" example:"3"`
	ChunkId  int     `json:"chunk_id" example:"7"`
	Score    float32 `json:"score" example:"0.82"`
	Text     string  `json:"text"`
}

type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type UploadResponse struct {
	Message         string `json:"message"`
	DocId           string `json:"doc_id"`
	FileName        string `json:"file_name"`
	ChunksCreated   int    `json:"chunks_created"`
	UploadTimestamp string `json:"upload_timestamp"`
}

type DocumentEntry struct {
	DocId           string `json:"doc_id"`
	FileName        string `json:"file_name"`
	ChunksCount     int    `json:"chunks_count"`
	UploadTimestamp string `json:"upload_timestamp"`
	LastUpdated     string `json:"last_updated"`
}

type DocumentsResponse struct {
	Documents []DocumentEntry `json:"documents"`
}

type DeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount uint64 `json:"deleted_count"`
}

type ServiceStatus struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string                   `json:"status" example:"ok"`
	Services map[string]ServiceStatus `json:"services"`
}

type ClientStatus struct {
	APIKeyPresent bool   `json:"api_key_present"`
	Initialized   bool   `json:"initialized"`
	Error         string `json:"error,omitempty"`
}

type StatusResponse struct {
	Embedding   ClientStatus `json:"embedding"`
	LLM         ClientStatus `json:"llm"`
	VectorIndex struct {
		Addr       string `json:"addr"`
		Collection string `json:"collection"`
	} `json:"vector_index"`
	RedisAddr string `json:"redis_addr"`
}

type ErrorResponse struct {
	Detail string `json:"detail" example:"An internal server error occurred. Please try again later."`
}

type RootResponse struct {
	Message string `json:"message" example:"RAG Synapse API"`
	Status  string `json:"status" example:"running"`
}
