// Package curriculum matches a training program against a student's ledger.
//
// A subject counts as completed when some ledger course with the same code
// is neither failed, pending nor exempt. Recommend suggests subjects whose
// prerequisites are all completed; Evaluate produces the performance
// review (per-semester pass/fail, curriculum progress, graduation outlook
// and retake cost). Policy constants come from configuration.
package curriculum
