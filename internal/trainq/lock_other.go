//go:build !unix

package trainq

// lockFile is a no-op where flock is unavailable; only the in-process
// mutex guards the queue there.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
