package laststore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T, quota int64) *Store {
	t.Helper()
	s, err := New(t.TempDir(), quota)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("small file lands in the fast tier", func(t *testing.T) {
		s := newStore(t, 1<<20)
		backend, err := s.Save(ctx, []byte("payload"), "tiny.mdb")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if backend != BackendFast {
			t.Errorf("backend = %q, want %q", backend, BackendFast)
		}
		rec := s.Restore(ctx)
		if rec == nil {
			t.Fatal("Restore returned nil")
		}
		if !bytes.Equal(rec.Bytes, []byte("payload")) || rec.Name != "tiny.mdb" {
			t.Errorf("Restore = %q/%q, want payload/tiny.mdb", rec.Name, rec.Bytes)
		}
	})

	t.Run("file past the quota falls back to bolt", func(t *testing.T) {
		s := newStore(t, 16)
		big := bytes.Repeat([]byte("x"), 100)
		backend, err := s.Save(ctx, big, "big.mdb")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if backend != BackendBolt {
			t.Errorf("backend = %q, want %q", backend, BackendBolt)
		}
		rec := s.Restore(ctx)
		if rec == nil {
			t.Fatal("Restore returned nil")
		}
		if !bytes.Equal(rec.Bytes, big) || rec.Name != "big.mdb" {
			t.Errorf("Restore = %q with %d bytes, want big.mdb with %d", rec.Name, len(rec.Bytes), len(big))
		}
	})

	t.Run("quota counts the encoded size", func(t *testing.T) {
		// 12 raw bytes encode to 16 base64 chars; a 15-byte quota must
		// reject them even though the raw size fits.
		s := newStore(t, 15)
		backend, err := s.Save(ctx, bytes.Repeat([]byte("a"), 12), "edge.mdb")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if backend != BackendBolt {
			t.Errorf("backend = %q, want %q", backend, BackendBolt)
		}
	})

	t.Run("zero quota disables the bound", func(t *testing.T) {
		s := newStore(t, 0)
		backend, err := s.Save(ctx, bytes.Repeat([]byte("x"), 1<<16), "nolimit.mdb")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if backend != BackendFast {
			t.Errorf("backend = %q, want %q", backend, BackendFast)
		}
	})

	t.Run("nothing persisted restores nil", func(t *testing.T) {
		s := newStore(t, 1<<20)
		if rec := s.Restore(ctx); rec != nil {
			t.Errorf("Restore = %+v, want nil", rec)
		}
	})
}

func TestSingleRecordAcrossTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("bolt save clears the fast slot", func(t *testing.T) {
		s := newStore(t, 64)
		if _, err := s.Save(ctx, []byte("small"), "small.mdb"); err != nil {
			t.Fatalf("Save small: %v", err)
		}
		big := bytes.Repeat([]byte("y"), 200)
		if _, err := s.Save(ctx, big, "big.mdb"); err != nil {
			t.Fatalf("Save big: %v", err)
		}
		rec := s.Restore(ctx)
		if rec == nil || rec.Name != "big.mdb" {
			t.Fatalf("Restore = %+v, want big.mdb", rec)
		}
		// The fast tier checks first; a stale slot there would have
		// shadowed the bolt record.
		if rec2, err := s.fast.load(); err != nil || rec2 != nil {
			t.Errorf("fast slot = %+v, %v, want empty after bolt save", rec2, err)
		}
	})

	t.Run("fast save clears the bolt slot", func(t *testing.T) {
		s := newStore(t, 64)
		big := bytes.Repeat([]byte("y"), 200)
		if _, err := s.Save(ctx, big, "big.mdb"); err != nil {
			t.Fatalf("Save big: %v", err)
		}
		if _, err := s.Save(ctx, []byte("small"), "small.mdb"); err != nil {
			t.Fatalf("Save small: %v", err)
		}
		rec := s.Restore(ctx)
		if rec == nil || rec.Name != "small.mdb" {
			t.Fatalf("Restore = %+v, want small.mdb", rec)
		}
		if rec2, err := s.bolt.load(); err != nil || rec2 != nil {
			t.Errorf("bolt slot = %+v, %v, want empty after fast save", rec2, err)
		}
	})
}

func TestRestoreSurvivesCorruption(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Save(ctx, []byte("data"), "ok.mdb"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Corrupt the fast tier payload in place.
	if err := os.WriteFile(filepath.Join(dir, "laststate", "last_file"), []byte("!!not base64!!"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// Corrupted slot reads as "no record", never an error to the caller.
	if rec := s.Restore(ctx); rec != nil {
		t.Errorf("Restore = %+v, want nil for a corrupted slot", rec)
	}
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	big := bytes.Repeat([]byte("z"), 100)
	if _, err := s.Save(ctx, big, "persisted.mdb"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := New(dir, 16)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	rec := s2.Restore(ctx)
	if rec == nil || rec.Name != "persisted.mdb" || !bytes.Equal(rec.Bytes, big) {
		t.Errorf("Restore after reopen = %+v, want the persisted record", rec)
	}
}
