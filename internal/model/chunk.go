package model

// DocumentChunk is one contiguous slice of a source document, the unit of
// embedding and retrieval. All chunks for a (version, file) pair are written
// and removed together; they are never mutated in place.
type DocumentChunk struct {
	Content     string `json:"content"`
	VersionID   string `json:"version_id"`
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// ChunkPoint pairs a chunk with its embedding for a vector index upsert.
type ChunkPoint struct {
	ID        string
	Embedding []float32
	Chunk     DocumentChunk
}

// ContextChunk is a retrieval hit: a stored chunk plus its similarity score
// for one query. Higher score means more relevant. Not persisted.
type ContextChunk struct {
	Content    string  `json:"content"`
	VersionID  string  `json:"version_id"`
	FileID     string  `json:"file_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}
