package models

import "time"

// Filter names attached to every vector entry. The topic filter doubles as a
// namespace-integrity check at retrieval time.
const (
	FilterTopicID = "topicId"
	FilterFileID  = "fileId"
)

// VectorEntry is one chunk of extracted text inside a namespace. Key is the
// owning file's id; re-indexing a file replaces all entries under its key.
type VectorEntry struct {
	Namespace  string            `db:"namespace"`
	Key        string            `db:"key"`
	ChunkIndex int               `db:"chunk_index"`
	Content    string            `db:"content"`
	Embedding  []float32         `db:"embedding"`
	Filters    map[string]string `db:"filters"`
	CreatedAt  time.Time         `db:"created_at"`
}

// VectorMatch is a search hit with its cosine similarity score.
type VectorMatch struct {
	Key     string
	Content string
	Filters map[string]string
	Score   float64
}
