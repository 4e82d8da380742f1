package store

import (
	"strings"

	"github.com/samber/lo"
)

// maxBatch caps the ids bound into one IN list. SQLite rejects statements
// with more than 32766 variables.
var maxBatch = 500

// inBatches splits ids into chunks of at most maxBatch, each with its
// placeholder list and bound args.
func inBatches(ids []string) []batch {
	return lo.Map(lo.Chunk(ids, maxBatch), func(chunk []string, _ int) batch {
		return batch{
			placeholders: strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","),
			args:         lo.Map(chunk, func(id string, _ int) any { return id }),
		}
	})
}

type batch struct {
	placeholders string
	args         []any
}
