// Package lifecycle is the stage controller for an RFP pursuit.
//
// Stages form a fixed pipeline from Intake to PostBid, with Abandoned
// reachable from every non-terminal stage and PostBid ending in exactly one
// of Won, Lost or Abandoned. Terminal stages have no outgoing edges.
//
// Four edges are gated by an evaluator verdict (see Check). A missing
// aggregate leaves the gate pending; Advance only moves the record when the
// verdict passes.
package lifecycle
