// Package speclogic implements a small symbolic-logic engine for checking
// the observable behavior of stateful objects across a sequence of method
// invocations.
//
// A behavior is a formula over the call history: "was method m received
// at time t with arguments a, b", combined with comparison, negation,
// conjunction and existential quantification over time and value. Each
// formula is an immutable tree built through smart constructors that fold
// constant subexpressions eagerly, so a tree never contains a redundant node
// over operands that are already concrete.
//
// Evaluation is three-valued. Given a call log, Evaluate reduces a formula
// to Const true, Const false, or a residual formula that cannot be decided
// yet:
//   - time-quantified existentials search the finite domain 0..len(log)-1
//   - value-quantified existentials are never enumerated; they close only
//     when their body pins the variable with an equality to a constant
//   - received predicates whose time is not pinned stay undecided
//
// A Behavior pairs a formula with two reserved variables, one for the call's
// arguments and one for its result. Check substitutes the actual values of
// a call and requires the formula to decide to true against the log as it
// stood before that call.
package speclogic
