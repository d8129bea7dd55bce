// Package pathway turns transition queries into transition pathways.
//
// Resolve and ResolveQuery expand a per-channel symmetry query into concrete
// per-site symmetry vectors for one spin system. Assemble filters the spin
// system's transitions by those vectors for every event of a method and
// combines the per-event selections into pathways by cartesian product.
//
// Queries that cannot match because a channel isotope is missing, or because
// a target needs more sites than exist, resolve to an empty set and are
// explained by a Diagnostic instead of an error.
package pathway
