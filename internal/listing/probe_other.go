//go:build !unix

package listing

import "os"

// Without a permission-bit model every file counts as executable and
// ownership is unknown.
func statPath(path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Kind: kindFromMode(info.Mode()),
		Perm: info.Mode().Perm(),
	}, nil
}
