package core

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// ResourceID identifies a loaded asset for the lifetime of the process.
// The zero value is never handed out.
type ResourceID uint64

const InvalidID ResourceID = 0

func (id ResourceID) IsValid() bool {
	return id != InvalidID
}

func (id ResourceID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// NewRandomID draws 64 random bits from the uuid v4 generator, which reads
// crypto/rand. Used for runtime objects that have no backing file.
func NewRandomID() ResourceID {
	for {
		u := uuid.New()
		id := ResourceID(binary.LittleEndian.Uint64(u[:8]) ^ binary.LittleEndian.Uint64(u[8:]))
		if id != InvalidID {
			return id
		}
	}
}

// NewPathID hashes a canonical path. The same path always yields the same id,
// across loads and across sessions.
func NewPathID(canonicalPath string) ResourceID {
	id := ResourceID(xxhash.Sum64String(canonicalPath))
	if id == InvalidID {
		// keep the zero value reserved
		id = ResourceID(xxhash.Sum64String(canonicalPath + "\x00"))
	}
	return id
}
