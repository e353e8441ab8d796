package migrate

import (
	"context"

	"github.com/storacha/migrate-to-w3up/internal/logging"
)

// fanOut reads Uploads from src in source order and emits one
// FetchablePart per part, in input order. It does not start pulling the
// next upload's parts until the current upload's parts have all been
// consumed downstream, so the Assembler never has to hold more than k
// uploads' worth of state in flight (see partMigrator in partmigrator.go
// for the k+1 look-ahead bound enforced by the unbuffered handoff channel).
func fanOut(ctx context.Context, src Source, log logging.Printer) <-chan FetchablePart {
	out := make(chan FetchablePart)

	go func() {
		defer close(out)

		for {
			upload, ok, err := src.Next(ctx)
			if err != nil {
				log.Error("source failed", "error", err)
				return
			}
			if !ok {
				return
			}

			log.Debug("upload fanned out", "upload", upload.CID, "parts", len(upload.Parts))

			for _, partCID := range upload.Parts {
				select {
				case out <- FetchablePart{Upload: upload, PartCID: partCID}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
