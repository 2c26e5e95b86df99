package chroma

// Wire types for Chroma's v2 REST API.

type collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createCollection struct {
	Name        string         `json:"name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GetOrCreate bool           `json:"get_or_create"`
}

// records is both the upsert body and the get response: parallel slices
// indexed by document.
type records struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings,omitempty"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
	Documents  []string         `json:"documents,omitempty"`
}

// byIDs selects documents for get and delete. Include is ignored by delete.
type byIDs struct {
	IDs     []string `json:"ids"`
	Include []string `json:"include,omitempty"`
}

type query struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResult holds one group per query embedding. ragbot always sends one.
type queryResult struct {
	IDs       [][]string         `json:"ids"`
	Distances [][]float32        `json:"distances"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Documents [][]string         `json:"documents"`
}
