package commonModels

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// Document has no standalone record in the index. It exists as the set of
// chunks sharing a doc id and is reconstructed by grouping payloads.
type Document struct {
	Id              string  `json:"doc_id"`
	Name            string  `json:"file_name"`
	UploadTimestamp string  `json:"upload_timestamp"` //ISO-8601
	ContentType     DocType `json:"content_type"`
}

// DocChunk is the atomic indexed unit. ChunkIndex is zero-based and strictly
// increasing per document in extraction order. Chunks are immutable once
// stored; the only mutation is bulk deletion by doc id.
type DocChunk struct {
	Doc        Document
	ChunkId    string //point uuid, globally unique
	ChunkIndex int
	Chunk      string
	PageNum    int //1-based; formats without native pagination report page 1
}

// ChunkPayload is what the vector index stores alongside each vector.
type ChunkPayload struct {
	DocId           string
	FileName        string
	Page            int
	ChunkIndex      int
	Text            string
	UploadTimestamp string
}

// SearchResult is transient query output, ordered by descending score.
// Score is the cosine similarity exactly as the index reports it.
type SearchResult struct {
	Id      string
	Score   float32
	Payload ChunkPayload
}

// DocumentInfo is one catalog entry, built by grouping chunk payloads.
type DocumentInfo struct {
	DocId           string `json:"doc_id"`
	FileName        string `json:"file_name"`
	ChunksCount     int    `json:"chunks_count"`
	UploadTimestamp string `json:"upload_timestamp"`
}
