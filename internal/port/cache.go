package port

// DocCache stores generated documentation keyed by unit content hash.
// Stored entries become durable only on Commit.
type DocCache interface {
	Lookup(hash string) (string, bool)

	Store(hash, docs string)

	Commit() error

	Discard()
}
