package organizer

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// copyVerify copies source to target and verifies the copy by size and
// SHA-256 digest before reporting success. On any failure the partial
// target is removed and the source is left untouched.
func copyVerify(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	// O_EXCL: the collision check already ran under the name lock, so an
	// existing target here means something raced us outside the process.
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating target: %w", err)
	}

	srcHash := sha256.New()
	n, err := io.Copy(out, io.TeeReader(in, srcHash))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("copying: %w", err)
	}
	if n != info.Size() {
		os.Remove(target)
		return fmt.Errorf("short copy: wrote %d of %d bytes", n, info.Size())
	}

	dstHash, err := hashFile(target)
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("verifying copy: %w", err)
	}
	if !bytes.Equal(srcHash.Sum(nil), dstHash) {
		os.Remove(target)
		return fmt.Errorf("copy verification failed: digest mismatch")
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
