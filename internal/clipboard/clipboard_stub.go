//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "fmt"

func write(f format, _ []byte) error {
	return fmt.Errorf("clipboard %s operations are not supported on this platform", f)
}

func read(f format) ([]byte, error) {
	return nil, fmt.Errorf("clipboard %s operations are not supported on this platform", f)
}
