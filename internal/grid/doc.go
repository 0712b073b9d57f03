// Package grid implements the uniform cell decomposition that bounds
// neighbour search to nearby buckets.
//
// A [Grid] owns every particle through per-cell buckets. Each [Cell] carries
// a boundary list, computed once at construction, of the other cells whose
// centres lie within the interaction radius. Work is dispatched with
// [Grid.ForEachCell], which splits the first axis into contiguous row ranges
// over a persistent worker pool and blocks until every range is done.
//
// # Thread Safety
//
// Within one ForEachCell pass no two workers visit the same cell, so a
// CellFunc may mutate the particles of the cell it is given without locking.
// [Grid.RedistributeParticles] moves particles across worker partitions and
// locks both cells of a move in flat-index order. AddParticle and
// AddParticles must not be called while a pass is in flight.
package grid
