package migrate

import (
	"context"

	"github.com/storacha/migrate-to-w3up/internal/logging"
)

// bind issues the register-upload invocation for each UploadPartsReady,
// binding all its parts to the upload CID, and emits the terminal
// UploadSuccess or UploadFailure.
func bind(ctx context.Context, in <-chan UploadPartsReady, dest DestinationClient, auth Authorization, with string, log logging.Printer) <-chan Outcome {
	out := make(chan Outcome)

	go func() {
		defer close(out)

		for ready := range in {
			shards := make([]string, 0, len(ready.Upload.Parts))
			seen := make(map[string]struct{}, len(ready.Parts))
			for _, p := range ready.Upload.Parts {
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				shards = append(shards, p)
			}

			receipt, err := dest.Invoke(ctx, Invocation{
				Can:  "register-upload",
				With: with,
				Args: map[string]any{"root": ready.Upload.CID, "shards": shards},
				Auth: auth,
			})

			var outcome Outcome
			if err != nil {
				log.Warn("bind failed", "upload", ready.Upload.CID, "error", err)
				outcome = UploadFailure{
					Upload: ready.Upload,
					Parts:  widenParts(ready.Parts),
					Cause:  bindFailureCause(nil, err),
				}
			} else if receipt.Ok == nil {
				log.Warn("bind rejected", "upload", ready.Upload.CID)
				outcome = UploadFailure{
					Upload: ready.Upload,
					Parts:  widenParts(ready.Parts),
					Cause:  bindFailureCause(&receipt, nil),
				}
			} else {
				log.Info("upload migrated", "upload", ready.Upload.CID, "parts", len(ready.Parts))
				outcome = UploadSuccess{Upload: ready.Upload, Parts: ready.Parts, BindReceipt: receipt}
			}

			select {
			case out <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func widenParts(parts map[string]PartSuccess) map[string]PartOutcome {
	widened := make(map[string]PartOutcome, len(parts))
	for cid, p := range parts {
		widened[cid] = p
	}
	return widened
}
