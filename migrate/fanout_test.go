package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_EmitsOnePartPerPartInOrder(t *testing.T) {
	uploads := []Upload{
		{CID: "u1", Parts: []string{"p1", "p2"}},
		{CID: "u2", Parts: []string{"p3"}},
	}
	src := newSliceSource(uploads...)

	out := fanOut(context.Background(), src, nopLogger{})

	var got []FetchablePart
	for fp := range out {
		got = append(got, fp)
	}

	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].PartCID)
	assert.Equal(t, "u1", got[0].Upload.CID)
	assert.Equal(t, "p2", got[1].PartCID)
	assert.Equal(t, "p3", got[2].PartCID)
	assert.Equal(t, "u2", got[2].Upload.CID)
}

func TestFanOut_StopsOnCancellation(t *testing.T) {
	uploads := make([]Upload, 100)
	for i := range uploads {
		uploads[i] = Upload{CID: "u", Parts: []string{"p"}}
	}
	src := newSliceSource(uploads...)

	ctx, cancel := context.WithCancel(context.Background())
	out := fanOut(ctx, src, nopLogger{})

	<-out
	cancel()

	done := make(chan struct{})
	go func() {
		for range out {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fanOut did not close its output channel after cancellation")
	}
}

func TestFanOut_StopsOnSourceError(t *testing.T) {
	out := fanOut(context.Background(), &erroringSource{}, nopLogger{})
	for range out {
		t.Fatal("expected no parts from an immediately erroring source")
	}
}

type erroringSource struct{}

func (erroringSource) Next(ctx context.Context) (Upload, bool, error) {
	return Upload{}, false, context.Canceled
}

func (erroringSource) Len() (int, bool) { return 0, false }
