package destination

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDelegationSet_ReadsJSONArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proofs.json")
	require.NoError(t, os.WriteFile(path, []byte(`["proof-a","proof-b"]`), 0o644))

	set, err := LoadDelegationSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"proof-a", "proof-b"}, set.Proofs())
}

func TestLoadDelegationSet_MissingFileErrors(t *testing.T) {
	_, err := LoadDelegationSet("/nonexistent/path/proofs.json")
	assert.Error(t, err)
}

func TestLoadDelegationSet_InvalidJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proofs.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := LoadDelegationSet(path)
	assert.Error(t, err)
}

func TestNewDelegationSet_Wraps(t *testing.T) {
	set := NewDelegationSet([]string{"p1"})
	assert.Equal(t, []string{"p1"}, set.Proofs())
}
