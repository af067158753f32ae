// @title           Synapse RAG API
// @version         1.0
// @description     Document question answering over your own files. Upload PDF, DOCX or TXT documents and chat with their content.

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/data/store"
	"github.com/synapserag/synapse/internal/handlers"
	"github.com/synapserag/synapse/internal/rag"
	"github.com/synapserag/synapse/internal/rag/embedding/googleEmbedding"
	"github.com/synapserag/synapse/internal/rag/llm/deepseek"
	"github.com/synapserag/synapse/internal/rag/vectorDB/qdrantDB"
	"github.com/synapserag/synapse/internal/server"
	"github.com/synapserag/synapse/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on the environment")
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//the document catalog cache - redis when it's up, in-process otherwise
	var catalog store.CatalogStore
	if redisCatalog := store.GetRedisCatalogStore(serviceContext); redisCatalog != nil {
		catalog = redisCatalog
	} else {
		logger.Error("Redis store is offline, caching the catalog in memory")
		catalog = store.InitInMemoryCatalogStore()
	}

	// external clients are lazy: a dead dependency surfaces per request as a
	// 503 instead of blocking startup
	ragService := rag.NewService(rag.Providers{
		Embedder: googleEmbedding.GetGoogleEmbeddingClient,
		LLM:      deepseek.GetDeepSeekClient,
		Index:    qdrantDB.GetQdrantClient,
	}, catalog)

	handlers.InitHandlers(ragService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
