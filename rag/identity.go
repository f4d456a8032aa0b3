package rag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ChunkID derives the stored identifier for a chunk. The digest is a pure
// function of its inputs: re-running the same ingestion (same crawledAt)
// produces the same IDs so retries overwrite instead of duplicating, while
// a fresh crawl timestamp yields a disjoint ID set so old and new
// generations can coexist until the old one is pruned.
//
// Callers must guarantee crawledAt is distinct across genuinely distinct
// runs; otherwise stale and fresh chunks become indistinguishable.
func ChunkID(companyName, sourceType string, chunkIndex int, crawledAt string) string {
	base := fmt.Sprintf("%s_%s_%d_%s", companyName, sourceType, chunkIndex, crawledAt)
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
