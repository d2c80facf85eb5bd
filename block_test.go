package psxcore

import "testing"

func TestMakeBlockKey_RoundTrip(t *testing.T) {
	for _, pc := range []uint32{0, 4, 0x1000, RAMSize - 4} {
		for _, user := range []bool{false, true} {
			key := MakeBlockKey(pc, user)
			if got := key.PC(); got != pc {
				t.Fatalf("pc=%#x user=%v: key.PC() = %#x", pc, user, got)
			}
			if got := key.UserMode(); got != user {
				t.Fatalf("pc=%#x user=%v: key.UserMode() = %v", pc, user, got)
			}
		}
	}
}

func TestMakeBlockKey_ModeSplitsIdentity(t *testing.T) {
	kernel := MakeBlockKey(0x400, false)
	user := MakeBlockKey(0x400, true)
	if kernel == user {
		t.Fatal("same pc in kernel vs user mode must produce distinct keys")
	}
}

func TestCodeBlock_PageSpan_SinglePage(t *testing.T) {
	b := &CodeBlock{
		Key:          MakeBlockKey(0x10, false),
		Instructions: make([]CodeBlockInstruction, 3),
	}
	if got := b.StartPage(); got != 0 {
		t.Fatalf("StartPage() = %d, want 0", got)
	}
	if got := b.EndPage(); got != 1 {
		t.Fatalf("EndPage() = %d, want 1", got)
	}
}

func TestCodeBlock_PageSpan_CrossesPageBoundary(t *testing.T) {
	// Starts four words before the end of page 0, runs eight words long,
	// so it spans pages 0 and 1.
	start := uint32(PageSize - 16)
	b := &CodeBlock{
		Key:          MakeBlockKey(start, false),
		Instructions: make([]CodeBlockInstruction, 8),
	}
	if got := b.StartPage(); got != 0 {
		t.Fatalf("StartPage() = %d, want 0", got)
	}
	if got := b.EndPage(); got != 2 {
		t.Fatalf("EndPage() = %d, want 2", got)
	}
}
