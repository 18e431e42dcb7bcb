package model

import "fmt"

func errInvalidKey(key, filename string) error {
	return fmt.Errorf("hash set key %q does not match lowercased filename %q", key, filename)
}
