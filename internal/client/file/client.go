package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const fileMode = 0o600

// FileClient keeps session snapshots in one JSON file, keyed by client id.
// The file holds a bearer token, so it is only readable by the owner.
type FileClient struct {
	path string
	mu   sync.Mutex
}

func NewFileClient(path string) *FileClient {
	return &FileClient{
		path: path,
	}
}

func (fc *FileClient) Path() string {
	return fc.path
}

func (fc *FileClient) SaveSessionState(ctx context.Context, clientID string, state []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	states, err := fc.read()
	if err != nil {
		return err
	}
	states[clientID] = jsoniter.RawMessage(state)

	data, err := jsoniter.MarshalIndent(states, "", "  ")
	if err != nil {
		return errors.Wrap(err, "MarshalIndent")
	}

	return fc.write(data)
}

// LoadSessionState returns nil when nothing was saved for clientID.
func (fc *FileClient) LoadSessionState(ctx context.Context, clientID string) ([]byte, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	states, err := fc.read()
	if err != nil {
		return nil, err
	}

	state, ok := states[clientID]
	if !ok {
		return nil, nil
	}
	return state, nil
}

func (fc *FileClient) read() (map[string]jsoniter.RawMessage, error) {
	states := map[string]jsoniter.RawMessage{}

	data, err := os.ReadFile(fc.path)
	if errors.Is(err, os.ErrNotExist) {
		return states, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}

	if len(data) == 0 {
		return states, nil
	}

	if err := jsoniter.Unmarshal(data, &states); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", fc.path)
	}

	return states, nil
}

// write replaces the file through a rename so a crash never leaves half a
// snapshot behind.
func (fc *FileClient) write(data []byte) error {
	dir := filepath.Dir(fc.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(fc.path)+".*")
	if err != nil {
		return errors.Wrap(err, "CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "Chmod")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "Write")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "Close")
	}

	if err := os.Rename(tmp.Name(), fc.path); err != nil {
		return errors.Wrap(err, "Rename")
	}

	return nil
}
