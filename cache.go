// cache.go - block map, page-indexed reverse map, and flush ledger
//
// One-to-one port of original_source/src/core/cpu_code_cache.cpp's
// CodeCache::GetNextBlock / FlushBlocks / FlushBlock / Reset, per spec §4.3.

package psxcore

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// flushLedgerCapacity bounds the diagnostic flush history kept for tests
// and host tooling to inspect "which blocks did invalidating page P just
// flush" without the cache needing unbounded flush history for
// correctness (I1-I4 never consult it).
const flushLedgerCapacity = 256

// FlushRecord is one entry in the bounded flush ledger.
type FlushRecord struct {
	Key  BlockKey
	Page uint32
}

// BlockCache owns every live CodeBlock (block map) and maintains a
// page-indexed reverse index of non-owning back-references for
// self-modifying-code invalidation (spec §3's "RAM page map").
type BlockCache struct {
	bus      Bus
	emitter  NativeEmitter
	useNative bool
	log      *slog.Logger

	blocks  map[BlockKey]*CodeBlock
	pageMap [PageCount][]*CodeBlock

	currentBlock  *CodeBlock
	blockFlushed  bool

	flushLedger *lru.Cache[int, FlushRecord]
	flushSeq    int
}

// NewBlockCache constructs an empty cache wired to bus, registering itself
// as the bus's invalidate callback (spec §4.5: "The bus notifies the cache
// via a registered callback"). emitter may be nil, meaning every block
// runs through the cached interpreter (recompiler disabled).
func NewBlockCache(bus Bus, emitter NativeEmitter, log *slog.Logger) *BlockCache {
	if log == nil {
		log = slog.Default()
	}
	ledger, _ := lru.New[int, FlushRecord](flushLedgerCapacity)
	c := &BlockCache{
		bus:       bus,
		emitter:   emitter,
		useNative: emitter != nil,
		log:       log,
		blocks:    make(map[BlockKey]*CodeBlock),
		flushLedger: ledger,
	}
	bus.RegisterInvalidateCallback(c.FlushPage)
	return c
}

// GetOrCompile returns the cached block for (pc, userMode), compiling and
// inserting one if this is the first dispatch to that key. Returns
// ErrEmptyDecode (via CompileBlock) if the decoder produced nothing; the
// caller must then fall back to uncached interpretation for this
// iteration, per spec §4.3.
func (c *BlockCache) GetOrCompile(pc uint32, userMode bool) (*CodeBlock, error) {
	key := MakeBlockKey(pc, userMode)
	if b, ok := c.blocks[key]; ok {
		return b, nil
	}

	instructions, err := CompileBlock(c.bus, key.PC(), userMode)
	if err != nil {
		return nil, err
	}

	block := &CodeBlock{Key: key, Instructions: instructions}

	if c.useNative {
		native, emitErr := c.emitter.Emit(key, instructions)
		if emitErr != nil {
			c.log.Warn("native emitter failed, block kept for cached interpreter",
				"pc", key.PC(), "user_mode", key.UserMode(), "error", emitErr)
		} else {
			block.Native = native
		}
	}

	c.blocks[key] = block

	if c.bus.IsRAM(key.PC()) {
		for page := block.StartPage(); page < block.EndPage(); page++ {
			c.pageMap[page] = append(c.pageMap[page], block)
			c.bus.SetCodePage(page)
		}
	}

	c.log.Debug("compiled block", "pc", key.PC(), "user_mode", key.UserMode(),
		"instructions", len(instructions), "native", block.Native != nil)
	return block, nil
}

// FlushPage fully flushes every block currently registered on page, in
// newest-first order, continuing until the page's slot is empty. This is
// the callback the bus invokes on a guest store into a flagged RAM page
// (spec §4.5).
func (c *BlockCache) FlushPage(page uint32) {
	assertf(page < PageCount, "flush of out-of-range page %d", page)

	for len(c.pageMap[page]) > 0 {
		last := len(c.pageMap[page]) - 1
		c.flushBlock(c.pageMap[page][last], page)
	}
}

// flushBlock removes block from the block map and every page slot it
// overlaps, recording one diagnostic ledger entry for the block (tagged
// with the page whose flush triggered it), and
// either destroys it immediately or, if it is the block currently
// executing, defers destruction per invariant I4.
func (c *BlockCache) flushBlock(block *CodeBlock, triggeringPage uint32) {
	got, ok := c.blocks[block.Key]
	assertf(ok && got == block, "flush of block not present in block map: pc=0x%08x", block.PC())

	c.log.Debug("flushing block", "pc", block.PC(), "triggering_page", triggeringPage)

	for page := block.StartPage(); page < block.EndPage(); page++ {
		slot := c.pageMap[page]
		idx := -1
		for i, b := range slot {
			if b == block {
				idx = i
				break
			}
		}
		assertf(idx >= 0, "block pc=0x%08x missing its back-reference on page %d", block.PC(), page)
		c.pageMap[page] = append(slot[:idx], slot[idx+1:]...)
	}

	delete(c.blocks, block.Key)

	c.flushSeq++
	c.flushLedger.Add(c.flushSeq, FlushRecord{Key: block.Key, Page: triggeringPage})

	if c.currentBlock == block {
		c.blockFlushed = true
	}
}

// FlushBlock removes a single block identified by key, if present. Unlike
// FlushPage (driven by the bus), this is the narrow "self-flush while
// executing" entry point a Bus implementation may call directly when it
// knows exactly which block a write invalidated, without waiting for the
// dispatcher to re-check the flag.
func (c *BlockCache) FlushBlock(key BlockKey) {
	block, ok := c.blocks[key]
	if !ok {
		return
	}
	c.flushBlock(block, block.StartPage())
}

// Reset clears all per-page "code present" flags on the bus, clears every
// page-map slot, then drops every block from the block map (spec §4.3).
func (c *BlockCache) Reset() {
	c.bus.ClearCodePageFlags()
	for i := range c.pageMap {
		c.pageMap[i] = nil
	}
	c.blocks = make(map[BlockKey]*CodeBlock)
	c.log.Debug("block cache reset")
}

// FlushHistory returns the most recent flush ledger entries, oldest first,
// for tests and host tooling. Bounded by flushLedgerCapacity - this is
// diagnostic only and never consulted for correctness.
func (c *BlockCache) FlushHistory() []FlushRecord {
	keys := c.flushLedger.Keys()
	out := make([]FlushRecord, 0, len(keys))
	for _, k := range keys {
		if rec, ok := c.flushLedger.Peek(k); ok {
			out = append(out, rec)
		}
	}
	return out
}

// BeginExecution marks block as the one about to run, per spec §4.4's
// dispatcher loop ("current_block = B").
func (c *BlockCache) BeginExecution(block *CodeBlock) {
	c.currentBlock = block
	c.blockFlushed = false
}

// EndExecution clears the current-block marker and reports whether the
// block that just ran was flushed during its own execution (invariant
// I4): the dispatcher must destroy it now that control has returned.
func (c *BlockCache) EndExecution() (flushed bool) {
	flushed = c.blockFlushed
	c.currentBlock = nil
	c.blockFlushed = false
	return flushed
}

// BlockCount reports the number of live blocks, for tests asserting P4.
func (c *BlockCache) BlockCount() int { return len(c.blocks) }

// PageRefCount reports the number of back-references registered on page,
// for tests asserting P1.
func (c *BlockCache) PageRefCount(page uint32) int { return len(c.pageMap[page]) }
