// The fast tier: base64 text under fixed key files, bounded by a quota.

package laststore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// Fixed slot keys. One file persisted at a time.
const (
	keyFile = "last_file"
	keyName = "last_file_name"
)

// fastStore writes the encoded payload and name as two key files inside
// dir. Writes go through a temp file and rename so a crash mid-write
// never leaves a torn payload.
type fastStore struct {
	dir   string
	quota int64
}

// save stores data and name, or ErrQuotaExceeded when the base64-encoded
// payload would exceed the quota. Nothing is written on overflow.
func (f *fastStore) save(data []byte, name string) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	if f.quota > 0 && int64(len(encoded)) > f.quota {
		return fmt.Errorf("%w: %d bytes encoded, quota %d", ErrQuotaExceeded, len(encoded), f.quota)
	}
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create fast store directory: %w", err)
	}
	if err := f.writeKey(keyName, []byte(name)); err != nil {
		return err
	}
	return f.writeKey(keyFile, []byte(encoded))
}

// load returns the stored record, or nil when the slot is empty.
func (f *fastStore) load() (*Record, error) {
	encoded, err := os.ReadFile(filepath.Join(f.dir, keyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read fast store payload: %w", err)
	}
	name, err := os.ReadFile(filepath.Join(f.dir, keyName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read fast store name: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode fast store payload: %w", err)
	}
	return &Record{Bytes: data, Name: string(name)}, nil
}

// clear empties the slot. Missing keys are not an error.
func (f *fastStore) clear() error {
	for _, key := range []string{keyFile, keyName} {
		if err := os.Remove(filepath.Join(f.dir, key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove fast store key %s: %w", key, err)
		}
	}
	return nil
}

func (f *fastStore) writeKey(key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(f.dir, key)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize key %s: %w", key, err)
	}
	return nil
}
