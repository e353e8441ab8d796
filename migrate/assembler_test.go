package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_AllPartsSucceedProducesReady(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1", "p2"}}
	in := make(chan PartOutcome, 2)
	in <- PartSuccess{Upload: upload, PartCID: "p1"}
	in <- PartSuccess{Upload: upload, PartCID: "p2"}
	close(in)

	ready, failed := assemble(in, nopLogger{})

	select {
	case r := <-ready:
		assert.Equal(t, "u1", r.Upload.CID)
		assert.Len(t, r.Parts, 2)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ready")
	}

	_, stillOpen := <-failed
	assert.False(t, stillOpen, "failed channel should be closed once input drains")
}

func TestAssemble_OneFailedPartProducesFailure(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1", "p2"}}
	in := make(chan PartOutcome, 2)
	in <- PartSuccess{Upload: upload, PartCID: "p1"}
	in <- PartFailure{Upload: upload, PartCID: "p2", Cause: Cause{Kind: CauseBadFetch}}
	close(in)

	ready, failed := assemble(in, nopLogger{})

	select {
	case f := <-failed:
		assert.Equal(t, "u1", f.Upload.CID)
		assert.Equal(t, CauseSomePartsFailed, f.Cause.Kind)
		assert.Equal(t, 1, f.Cause.Failed)
		assert.Equal(t, 2, f.Cause.Total)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure")
	}

	_, stillOpen := <-ready
	assert.False(t, stillOpen)
}

func TestAssemble_DuplicatePartsDedupedByDistinctSet(t *testing.T) {
	// A shard referenced twice in Upload.Parts is still only one distinct
	// part to complete.
	upload := Upload{CID: "u1", Parts: []string{"p1", "p1"}}
	in := make(chan PartOutcome, 1)
	in <- PartSuccess{Upload: upload, PartCID: "p1"}
	close(in)

	ready, failed := assemble(in, nopLogger{})

	select {
	case r := <-ready:
		require.Len(t, r.Parts, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ready")
	}
	<-failed
}

func TestAssemble_InterleavesIndependentUploads(t *testing.T) {
	u1 := Upload{CID: "u1", Parts: []string{"a"}}
	u2 := Upload{CID: "u2", Parts: []string{"b"}}
	in := make(chan PartOutcome, 2)
	in <- PartSuccess{Upload: u1, PartCID: "a"}
	in <- PartSuccess{Upload: u2, PartCID: "b"}
	close(in)

	ready, failed := assemble(in, nopLogger{})

	seen := map[string]bool{}
	for r := range ready {
		seen[r.Upload.CID] = true
	}
	for range failed {
	}

	assert.True(t, seen["u1"])
	assert.True(t, seen["u2"])
}
