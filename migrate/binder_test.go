package migrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_SuccessfulRegisterUploadYieldsUploadSuccess(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1", "p2"}}
	ready := make(chan UploadPartsReady, 1)
	ready <- UploadPartsReady{
		Upload: upload,
		Parts: map[string]PartSuccess{
			"p1": {Upload: upload, PartCID: "p1"},
			"p2": {Upload: upload, PartCID: "p2"},
		},
	}
	close(ready)

	dest := stubDest{receipt: Receipt{Ok: &ReceiptOk{Status: "done"}}}

	out := bind(context.Background(), ready, dest, noopAuth{}, "did:test", nopLogger{})

	select {
	case o := <-out:
		success, ok := o.(UploadSuccess)
		require.True(t, ok)
		assert.Equal(t, "u1", success.Upload.CID)
		assert.Len(t, success.Parts, 2)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bind outcome")
	}
}

func TestBind_ErrReceiptYieldsUploadFailure(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	ready := make(chan UploadPartsReady, 1)
	ready <- UploadPartsReady{
		Upload: upload,
		Parts:  map[string]PartSuccess{"p1": {Upload: upload, PartCID: "p1"}},
	}
	close(ready)

	dest := stubDest{receipt: Receipt{Err: &ReceiptErr{Name: "Error", Message: "rejected"}}}

	out := bind(context.Background(), ready, dest, noopAuth{}, "did:test", nopLogger{})

	o := <-out
	failure, ok := o.(UploadFailure)
	require.True(t, ok)
	assert.Equal(t, CauseBind, failure.Cause.Kind)
	assert.Contains(t, failure.Cause.Message, "rejected")
}

func TestBind_TransportErrorYieldsUploadFailure(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	ready := make(chan UploadPartsReady, 1)
	ready <- UploadPartsReady{
		Upload: upload,
		Parts:  map[string]PartSuccess{"p1": {Upload: upload, PartCID: "p1"}},
	}
	close(ready)

	dest := stubDest{err: errors.New("network down")}

	out := bind(context.Background(), ready, dest, noopAuth{}, "did:test", nopLogger{})

	o := <-out
	failure, ok := o.(UploadFailure)
	require.True(t, ok)
	assert.Equal(t, CauseBind, failure.Cause.Kind)
}

func TestBind_DedupsRepeatedShards(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1", "p1", "p2"}}
	ready := make(chan UploadPartsReady, 1)
	ready <- UploadPartsReady{
		Upload: upload,
		Parts: map[string]PartSuccess{
			"p1": {Upload: upload, PartCID: "p1"},
			"p2": {Upload: upload, PartCID: "p2"},
		},
	}
	close(ready)

	var captured Invocation
	dest := invokeFunc(func(ctx context.Context, inv Invocation) (Receipt, error) {
		captured = inv
		return Receipt{Ok: &ReceiptOk{Status: "done"}}, nil
	})

	out := bind(context.Background(), ready, dest, noopAuth{}, "did:test", nopLogger{})
	<-out

	shards, ok := captured.Args["shards"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"p1", "p2"}, shards)
}

type invokeFunc func(ctx context.Context, inv Invocation) (Receipt, error)

func (f invokeFunc) Invoke(ctx context.Context, inv Invocation) (Receipt, error) {
	return f(ctx, inv)
}
