package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 120 * time.Second //chat responses wait on the LLM
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//uploads
	MaxUploadBytes int64 = 50 << 20 //50MiB
	UploadTempDir        = "temporary_data"

	//chunking
	ChunkSizeLimit = 1000
	ChunkOverlap   = 150

	//ingestion - concurrent embedding calls per document
	EmbeddingWorkerCount = 4

	//vectorDB
	CollectionName         = "documents"
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1 //2-5 is preferred for prod according to documentation
	QdrantScrollPageSize   = 256
	EmbeddingDimension int32 = 1536

	//embeddings
	GoogleEmbeddingModel = "gemini-embedding-001"
	//query framing for retrieval-tuned embedding models
	QueryInstructionPrefix = "Instruct: Given a search query, retrieve relevant passages that answer the query\nQuery: "

	//llm - DeepSeek speaks the OpenAI wire protocol
	DeepSeekBaseURL = "https://api.deepseek.com"
	DeepSeekModel   = "deepseek-chat"

	//response pipeline
	DefaultTopK            = 5
	MaxTopK                = 20
	RelevanceThreshold     = 0.3 //fixed policy constant, not user-configurable
	GroundedTemperature    = 0.3
	ConversationalTemperature = 0.7

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisCatalogStore      = 0
	RedisCatalogCacheTTL   = 5 * time.Minute
	CatalogCacheKey        = "documents:catalog"
)

// env overrides, loaded per call so tests can swap them

func GetGeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func GetDeepSeekAPIKey() string {
	return os.Getenv("DEEPSEEK_API_KEY")
}

func GetQdrantAddr() (string, int) {
	host := os.Getenv("QDRANT_HOST")
	port, err := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || err != nil {
		return QdrantHost, QdrantGrpcPort
	}
	return host, port
}

func GetRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return RedisAddr
}

// AllowedOrigins for the React frontend.
var AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
