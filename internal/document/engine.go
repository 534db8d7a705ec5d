package document

// Engine is the PDF manipulation capability the operation executors depend
// on. Implementations transform whole files on disk; every method may fail
// with an opaque, classified error.
type Engine interface {
	// IsEncrypted reports whether the file requires a password to open.
	IsEncrypted(path string) (bool, error)
	// Decrypt writes a password-free copy of src to dst.
	Decrypt(src, dst, password string) error
	// Encrypt writes a copy of src to dst protected by password.
	// src and dst may be the same path.
	Encrypt(src, dst, password string) error
	// Merge concatenates the inputs, in order, into dst.
	Merge(inputs []string, dst string) error
	// Validate checks structural integrity. password opens protected
	// files; pass the empty string for unprotected ones.
	Validate(path, password string) error
}
