// Package il2cpp reconstructs typed views over managed objects in a remote
// IL2CPP (Unity) process. Views hold only the remote object's address; every
// access re-reads the remote bytes, so no state goes stale between polls.
//
// Layouts are the 64-bit IL2CPP object model: a two-word object header
// (klass pointer, monitor), then type-specific fields at fixed offsets.
package il2cpp

import (
	"ffsplit/process"
)

// Address is a remote memory address.
type Address = process.ProcessMemoryAddress

const (
	// T[]: element count and first element
	arrayLenOffset  = 0x18
	arrayDataOffset = 0x20

	// List<T>: backing array pointer and live count
	listItemsOffset = 0x10
	listSizeOffset  = 0x18

	// Dictionary<K,V>: entry array pointer and live count (buckets at 0x10
	// are not needed for iteration)
	mapEntriesOffset = 0x18
	mapCountOffset   = 0x20
)

// maxElements bounds every container length read from the remote process.
// A length beyond it is treated as corrupt and truncated.
const maxElements = 1 << 20
