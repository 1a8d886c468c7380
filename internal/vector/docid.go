package vector

import (
	"fmt"
	"strings"
)

// DocumentID 文档 ID 形如 "overview_603"
func DocumentID(kind Kind, movieID string) string {
	return string(kind) + "_" + movieID
}

// ParseDocumentID 拆出文档类型和电影 ID
func ParseDocumentID(id string) (Kind, string, error) {
	prefix, movieID, ok := strings.Cut(id, "_")
	if !ok || movieID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	kind := Kind(prefix)
	if kind.Collection() == "" {
		return "", "", fmt.Errorf("%w: unknown kind in %q", ErrInvalidDocumentID, id)
	}
	return kind, movieID, nil
}
