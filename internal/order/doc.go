// Package order keeps recipe steps and images in a dense 1-based sequence
//
// Every parent (a recipe) owns its own sequence per collection. New items
// are appended at count+1, moved items shift the items between their old
// and new positions by one slot, and removed items close the gap they
// leave. All mutations of one sequence are serialized and run inside a
// single storage transaction, so the positions of a parent are always
// exactly 1..n
package order
