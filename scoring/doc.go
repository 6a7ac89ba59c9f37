// Package scoring turns a compiled filter into per-row scores.
//
// A Plan binds the leaves of an expression to schema positions. A Scorer
// then maps every row of a batch to a value in [0, 1]:
//
//   - ModeDeterministic scores 1 for rows the filter accepts and 0 otherwise.
//   - ModeStatevector simulates a small circuit per row with one qubit per
//     leaf and reports the mean probability of reading 1.
//   - ModeAccelerated computes the same circuit with fused kernels and a
//     per-batch cache keyed by the row's literal pattern.
//   - ModeSparse draws seeded noise around a uniform distribution and is
//     used when the circuit budget is exceeded.
//
// SelectMode picks a mode from the row count and a Budget.
package scoring
