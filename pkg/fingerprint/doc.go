/*
Package fingerprint computes deterministic, order-independent digests of node
state snapshots.

A snapshot is first written into a canonical, type-tagged byte encoding (map keys
sorted, struct fields sorted by name, pointers followed) and the encoding is hashed
with BLAKE2b truncated to 128 bits. Two digests are only comparable when produced
by the same Version of the encoding.

	d1, _ := fingerprint.Of(domain.Snapshot{"a": 1, "b": "x"})
	d2, _ := fingerprint.Of(domain.Snapshot{"b": "x", "a": 1})
	// d1 == d2

Values that have no deterministic serialized form (channels, functions, open
handles, pointer cycles) are refused with a *domain.SerializationError.
Collisions are an accepted risk and are not checked for.
*/
package fingerprint
