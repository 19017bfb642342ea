package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeError reports a vector blob that cannot be decoded. Callers treat
// a decode failure as similarity 0 for that single item rather than
// aborting the query.
type DecodeError struct {
	Len    int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode vector blob of %d bytes: %s", e.Len, e.Reason)
}

// EncodeVector converts a float32 slice to a byte blob (little-endian).
func EncodeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// DecodeVector converts a byte blob back to a float32 slice. The blob
// length must be a positive multiple of 4.
func DecodeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 {
		return nil, &DecodeError{Len: 0, Reason: "empty blob"}
	}
	if len(blob)%4 != 0 {
		return nil, &DecodeError{Len: len(blob), Reason: "length not a multiple of 4"}
	}

	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 on dimension mismatch or when either vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
