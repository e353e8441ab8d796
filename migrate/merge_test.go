package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeOutcomes_CombinesBothChannels(t *testing.T) {
	bound := make(chan Outcome, 1)
	failures := make(chan UploadFailure, 1)

	bound <- UploadSuccess{Upload: Upload{CID: "ok"}}
	failures <- UploadFailure{Upload: Upload{CID: "bad"}}
	close(bound)
	close(failures)

	out := mergeOutcomes(bound, failures)

	seen := map[string]bool{}
	for o := range out {
		switch v := o.(type) {
		case UploadSuccess:
			seen[v.Upload.CID] = true
		case UploadFailure:
			seen[v.Upload.CID] = true
		}
	}

	assert.True(t, seen["ok"])
	assert.True(t, seen["bad"])
}

func TestMergeOutcomes_ClosesWhenBothInputsClose(t *testing.T) {
	bound := make(chan Outcome)
	failures := make(chan UploadFailure)

	out := mergeOutcomes(bound, failures)
	close(bound)
	close(failures)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("merge did not close output after both inputs closed")
	}
}

func TestMergeOutcomes_OneSidedStreamStillDelivered(t *testing.T) {
	bound := make(chan Outcome)
	failures := make(chan UploadFailure)
	close(failures)

	go func() {
		bound <- UploadSuccess{Upload: Upload{CID: "only"}}
		close(bound)
	}()

	out := mergeOutcomes(bound, failures)
	var got []Outcome
	for o := range out {
		got = append(got, o)
	}

	assert.Len(t, got, 1)
}
