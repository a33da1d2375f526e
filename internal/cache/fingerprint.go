package cache

import (
	"encoding/hex"
	"strings"

	"lukechampine.com/blake3"
)

// Key is the content fingerprint of an image plus its requested labels.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Fingerprint hashes image followed by the labels joined with ",". Label order
// matters: ["cat","dog"] and ["dog","cat"] are different keys.
func Fingerprint(image []byte, labels []string) Key {
	h := blake3.New(32, nil)
	_, _ = h.Write(image)
	_, _ = h.Write([]byte(strings.Join(labels, ",")))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}
