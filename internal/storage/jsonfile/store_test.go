package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type doc struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestStore_WriteAndRead(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	in := []doc{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}}
	if err := s.Write("users.json", in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var out []doc
	if err := s.Read("users.json", &out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != 2 || out[0].Name != "alice" || out[1].ID != 2 {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
}

func TestStore_ReadMissingFile(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	out := []doc{{ID: 99}}
	if err := s.Read("absent.json", &out); err != nil {
		t.Fatalf("Read of missing file: %v", err)
	}
	if len(out) != 1 || out[0].ID != 99 {
		t.Errorf("missing file must leave destination untouched, got %+v", out)
	}
}

func TestStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, name := range []string{
		"", "../escape.json", "sub/dir.json", "..", ".hidden",
		string(filepath.Separator) + "etc" + string(filepath.Separator) + "passwd",
	} {
		if err := s.Write(name, []doc{}); !errors.Is(err, ErrUnsafePath) {
			t.Errorf("Write(%q): want ErrUnsafePath, got %v", name, err)
		}
		var out []doc
		if err := s.Read(name, &out); !errors.Is(err, ErrUnsafePath) {
			t.Errorf("Read(%q): want ErrUnsafePath, got %v", name, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected writes left files behind: %v", entries)
	}
}

func TestStore_DoSerializesUpdates(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = s.Do(func() error {
					var all []doc
					if err := s.Read("counter.json", &all); err != nil {
						return err
					}
					all = append(all, doc{ID: int64(len(all) + 1)})
					return s.Write("counter.json", all)
				})
			}
		}()
	}
	wg.Wait()

	var all []doc
	if err := s.Read("counter.json", &all); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(all) != writers*perWriter {
		t.Errorf("lost updates: want %d records, got %d", writers*perWriter, len(all))
	}
}
