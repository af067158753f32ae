package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/synapserag/synapse/internal/adapter/utils"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
)

//splitter

// splitTextIntoChunks cuts text into chunks of at most limit characters with
// overlap characters shared between neighbors. The split point prefers a
// paragraph break, then a line break, then a sentence end, then a word
// boundary, hard-cutting only when the window has none of those. The same
// input always yields the same chunks.
func splitTextIntoChunks(text string, limit int, overlap int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= limit {
			chunks = append(chunks, text[start:])
			break
		}

		cut := findSplitPoint(text[start : start+limit])
		chunks = append(chunks, text[start:start+cut])

		step := cut - overlap
		if step <= 0 {
			// chunk shorter than the overlap, advance without one
			step = cut
		}
		start += step
	}
	return chunks
}

// findSplitPoint returns the length of the next chunk within the window,
// choosing the last occurrence of the best separator available.
func findSplitPoint(window string) int {
	for _, sep := range []string{"\n\n", "\n", ". ", " "} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return idx + len(sep)
		}
	}
	return len(window)
}

func getDocType(fileName string) (commonModels.DocType, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return commonModels.PDF, nil
	case ".docx", ".doc":
		return commonModels.DOCX, nil
	case ".txt":
		return commonModels.TXT, nil
	default:
		return commonModels.ERR, &commonModels.UnsupportedFormatError{Extension: ext}
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX:
		return extractWordDoc(path)
	case commonModels.TXT:
		return extractTxt(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// PrepareChunks splits every page and assigns each chunk a globally unique
// point id plus a per-document chunk index, strictly increasing in page
// order then split order. The indices exist before any embedding call is
// dispatched, which keeps ordering deterministic under concurrent embedding.
func PrepareChunks(pages []rawPage, doc commonModels.Document) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	chunkIndex := 0
	for _, page := range pages {
		stringChunks := splitTextIntoChunks(page.Content, config.ChunkSizeLimit, config.ChunkOverlap)

		for _, text := range stringChunks {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:        doc,
				ChunkId:    utils.GetNewUUID(),
				ChunkIndex: chunkIndex,
				Chunk:      text,
				PageNum:    page.Number,
			})
			chunkIndex++
		}
	}

	return allChunks
}
