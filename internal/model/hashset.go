package model

// HashSet is an unordered mapping from StoreKey (lowercased filename) to
// HashRecord, the in-memory representation of a ".orphdat" file (spec §3).
type HashSet map[string]*HashRecord

// Clone returns a deep copy of the set. The store's single in-memory cache
// slot hands out clones so that callers may mutate returned sets without
// aliasing the cache (spec §5).
func (s HashSet) Clone() HashSet {
	if s == nil {
		return nil
	}
	clone := make(HashSet, len(s))
	for key, record := range s {
		clone[key] = record.Clone()
	}
	return clone
}

// Equal performs a deep-equality comparison between two sets.
func (s HashSet) Equal(other HashSet) bool {
	if len(s) != len(other) {
		return false
	}
	for key, record := range s {
		otherRecord, ok := other[key]
		if !ok || !record.Equal(otherRecord) {
			return false
		}
	}
	return true
}

// EnsureValid checks invariant I1 (lowercased filename equals key) and I2
// (digest patterns) for every record in the set.
func (s HashSet) EnsureValid() error {
	for key, record := range s {
		if err := record.EnsureValid(); err != nil {
			return err
		}
		if record.StoreKey() != key {
			return errInvalidKey(key, record.Filename)
		}
	}
	return nil
}
