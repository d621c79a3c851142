package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds buffers used to encode and decode messages.
var BufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}
