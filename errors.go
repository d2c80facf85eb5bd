// errors.go - recoverable decode/compile error kinds
//
// Wrapped with github.com/pkg/errors rather than bare fmt.Errorf, matching
// the wider example pack's decode/compile error style (see DESIGN.md).

package psxcore

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyDecode is returned by CompileBlock when the decoder could not
// admit a single instruction at the requested start address - the fetch
// was uncacheable, the word read failed, or the first encoding was
// invalid. Per spec §4.2, the caller must fall back to uncached
// interpretation for that one dispatch iteration.
var ErrEmptyDecode = errors.New("empty block decode")

// ErrOutOfRange is returned by RAMBus when an access falls outside the
// backing RAM array.
var ErrOutOfRange = errors.New("address out of range")

// ErrEmitterFailed is returned internally when a NativeEmitter fails to
// produce a native body for an otherwise-valid decoded block. Per spec §7
// this is recoverable: the block stays in the cache and is run through the
// cached interpreter instead.
var ErrEmitterFailed = errors.New("native emitter failed")

// emptyDecodeAt wraps ErrEmptyDecode with the PC that produced it.
func emptyDecodeAt(pc uint32) error {
	return errors.Wrapf(ErrEmptyDecode, "pc=0x%08x", pc)
}

// emitterFailedFor wraps ErrEmitterFailed with the offending block's key.
func emitterFailedFor(key BlockKey) error {
	return errors.Wrapf(ErrEmitterFailed, "key=0x%08x (pc=0x%08x user=%v)", uint32(key), key.PC(), key.UserMode())
}

// assertf panics with a formatted message. Used only at the points spec
// §7 calls out as "fatal assertion in debug builds; undefined in release" -
// I1-I4 invariant checks the cache itself must never observe broken, since
// Go has no separate debug/release build mode to gate these on.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("psxcore: invariant violation: "+format, args...))
	}
}
