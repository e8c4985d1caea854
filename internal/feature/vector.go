package feature

import (
	"errors"
	"math"
)

// Vector is a fixed-length feature vector.
type Vector []float64

// ErrDimensionMismatch is returned when two vectors of different lengths
// are combined.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Dot returns the dot product of two vectors.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Norm returns the Euclidean (L2) norm of the vector.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two vectors, in [-1, 1].
// A zero vector has no direction; its similarity to anything is 0.
func Cosine(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}
