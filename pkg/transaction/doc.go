// Package transaction applies file mutations as an all-or-nothing
// sequence. Operations are appended while the transaction is building,
// executed strictly in order, and every executed operation keeps
// enough prior state (existed-before flag plus a backup copy) to undo
// itself exactly once. The first failure, including cancellation,
// rolls back every completed operation in reverse order before the
// original error is returned, so a failed run leaves the target tree
// byte-identical to its pre-run state.
package transaction
