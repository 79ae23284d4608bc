// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// lineDomainKey is the BLAKE3 keyed-hash domain for key log lines.
// Domain separation keeps these digests from colliding with any other
// keyed hash in the system. The bytes are the ASCII domain name,
// zero-padded to 32 bytes.
var lineDomainKey = [32]byte{
	'v', 'o', 'x', 'l', 'a', 'n', 'e', '.', 'k', 'e', 'y', 'l', 'o', 'g', '.',
	'l', 'i', 'n', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest returns a short hex digest of a key log line for correlating
// debug logs with collector-side records. Logging the digest instead
// of the line keeps secret material out of the process log.
func Digest(line string) string {
	hasher, err := blake3.NewKeyed(lineDomainKey[:])
	if err != nil {
		// NewKeyed fails only on a wrong key length, which is fixed
		// at compile time.
		panic("keylog: BLAKE3 keyed hasher initialization failed: " + err.Error())
	}
	hasher.Write([]byte(line))

	var digest [8]byte
	copy(digest[:], hasher.Sum(nil))
	return hex.EncodeToString(digest[:])
}
