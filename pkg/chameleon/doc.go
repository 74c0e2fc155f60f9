// Package chameleon is the public facade over the disjunctive-predicate
// optimizer: DB loads tables, Parser turns a filter expression into a
// predicate tree against one of them, and Executor plans and runs that
// tree against the table's candidate set. The three types mirror the
// DB/Parser/Executor surface the original chameleon crate exposed to its
// own benchmark binary.
package chameleon
