package model

const (
	SchemaFileStatePending = 1
	SchemaFileStateIndexed = 2
	SchemaFileStateFailed  = 3
)

// SchemaFile is the bookkeeping record for one uploaded schema document
// (DDL file or supporting doc). The raw bytes live in the file store under
// StoreKey; the derived chunk embeddings live in the vector index keyed by ID.
type SchemaFile struct {
	ID         string `json:"id"`
	VersionID  string `json:"version_id"`
	Filename   string `json:"filename"`
	StoreKey   string `json:"store_key"`
	Size       int64  `json:"size"`
	ChunkCount int    `json:"chunk_count"`
	State      int    `json:"state"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}
