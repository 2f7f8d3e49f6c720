// ABOUTME: Embedding vector encoding and similarity math
// ABOUTME: Vectors are stored as little-endian float64 blobs
package sqlite

import (
	"encoding/binary"
	"math"
)

// vectorToBlob converts a float64 slice to a binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
