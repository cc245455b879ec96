package atomichash

// defaultMaxRescues bounds how many displaced entries a single Insert call
// re-inserts before giving up.
const defaultMaxRescues = 64

// Config holds the optional settings of a Table. Use the With* functions to
// set them; the zero value is not meaningful on its own.
type Config struct {
	maxRescues int
	keyHasher  any // func(key K, seed uintptr) uintptr
}

// WithMaxRescues bounds the number of race casualties one Insert call will
// re-insert. An insert that displaces another key's entry through a race
// must publish that entry again, which may displace another one, and so on.
// Past the bound Insert returns an error wrapping ErrContention. Values below
// one are ignored.
func WithMaxRescues(n int) func(*Config) {
	return func(c *Config) {
		if n > 0 {
			c.maxRescues = n
		}
	}
}

// WithKeyHasher replaces the built-in hash function. fn must act as a
// family of independent functions indexed by seed: the table calls it with
// four fixed seeds to get a key's candidate slots. K must be the key type of
// the table the option is passed to, New panics otherwise.
//
//	t := New[string, int](1024, WithKeyHasher(HashString))
func WithKeyHasher[K comparable](fn func(key K, seed uintptr) uintptr) func(*Config) {
	return func(c *Config) {
		if fn != nil {
			c.keyHasher = fn
		}
	}
}

// WithBuiltInHasher explicitly selects Go's built-in map hash function,
// which is also the default.
func WithBuiltInHasher() func(*Config) {
	return func(c *Config) {
		c.keyHasher = nil
	}
}
