package hash

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// Fingerprint returns the hex xxHash64 of a serialized document.
func Fingerprint(data []byte) string {
	return format(xxhash.Sum64(data))
}

// FingerprintFile streams path through xxHash. A missing file returns an
// empty fingerprint and no error, so callers can compare against a document
// that has not been written yet.
func FingerprintFile(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, bufferSize)); err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}

	return format(h.Sum64()), nil
}

// format renders a sum as big-endian hex.
func format(sum uint64) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return hex.EncodeToString(buf)
}
