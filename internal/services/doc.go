// Package services runs the decision-gate evaluators against stored state.
//
// Every mutation follows the same shape: take the per-aggregate lock, load the
// snapshot inside a transaction, apply the pure engine call, write the result
// back with a version check, then publish any event the new state implies.
// Engine rejections abort the transaction, so the stored snapshot is left
// exactly as it was.
package services
