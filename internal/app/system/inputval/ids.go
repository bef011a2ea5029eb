package inputval

import "github.com/dalemusser/iglesiahub/internal/app/system/apperr"

// UniqueIDs drops duplicates while keeping first-seen order. Non-positive
// ids are a validation error.
func UniqueIDs(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, apperr.Validation("invalid id %d", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
