package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCentroid 没有向量可以求平均
	ErrEmptyCentroid = errors.New("centroid of empty vector set")

	// ErrDimensionMismatch 向量维度不一致
	ErrDimensionMismatch = errors.New("vector dimensions differ")
)

// Centroid 逐元素求算术平均，用 float64 累加
func Centroid(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyCentroid
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, ErrEmptyCentroid
	}

	sum := make([]float64, dims)
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), dims)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	n := float64(len(vectors))
	out := make([]float32, dims)
	for j := range sum {
		out[j] = float32(sum[j] / n)
	}
	return out, nil
}
