package migrate

import "github.com/storacha/migrate-to-w3up/internal/logging"

// accumulator tracks the in-flight state for one upload: the set of
// distinct parts it still needs, and the results received so far.
type accumulator struct {
	upload    Upload
	expected  map[string]struct{}
	received  map[string]PartOutcome
}

// assemble groups PartOutcomes by upload CID. It is the sole owner and
// sole mutator of its state map, so it needs no lock (spec.md §5): a
// single goroutine runs this loop start to finish.
//
// ready receives UploadPartsReady for uploads whose every part succeeded.
// failed receives UploadFailure for uploads with at least one failed
// part, as a side channel the outcome merger also listens on.
func assemble(in <-chan PartOutcome, log logging.Printer) (ready <-chan UploadPartsReady, failed <-chan UploadFailure) {
	readyCh := make(chan UploadPartsReady)
	failedCh := make(chan UploadFailure)

	go func() {
		defer close(readyCh)
		defer close(failedCh)

		state := make(map[string]*accumulator)

		for outcome := range in {
			var uploadCID, partCID string
			switch o := outcome.(type) {
			case PartSuccess:
				uploadCID, partCID = o.Upload.CID, o.PartCID
			case PartFailure:
				uploadCID, partCID = o.Upload.CID, o.PartCID
			}

			acc, ok := state[uploadCID]
			if !ok {
				upload := uploadOf(outcome)
				acc = &accumulator{
					upload:   upload,
					expected: upload.distinctParts(),
					received: make(map[string]PartOutcome, len(upload.Parts)),
				}
				state[uploadCID] = acc
			}

			acc.received[partCID] = outcome

			if !isComplete(acc) {
				continue
			}

			delete(state, uploadCID)

			if allSucceeded(acc) {
				parts := make(map[string]PartSuccess, len(acc.received))
				for cid, o := range acc.received {
					parts[cid] = o.(PartSuccess)
				}
				log.Debug("upload parts ready", "upload", uploadCID, "parts", len(parts))
				readyCh <- UploadPartsReady{Upload: acc.upload, Parts: parts}
				continue
			}

			failedCount := 0
			for _, o := range acc.received {
				if _, isFailure := o.(PartFailure); isFailure {
					failedCount++
				}
			}
			log.Warn("upload failed during assembly", "upload", uploadCID, "failed_parts", failedCount, "total_parts", len(acc.expected))
			failedCh <- UploadFailure{
				Upload: acc.upload,
				Parts:  acc.received,
				Cause:  somePartsFailedCause(failedCount, len(acc.expected)),
			}
		}
	}()

	return readyCh, failedCh
}

func uploadOf(o PartOutcome) Upload {
	switch v := o.(type) {
	case PartSuccess:
		return v.Upload
	case PartFailure:
		return v.Upload
	default:
		return Upload{}
	}
}

func isComplete(acc *accumulator) bool {
	if len(acc.received) < len(acc.expected) {
		return false
	}
	for partCID := range acc.expected {
		if _, ok := acc.received[partCID]; !ok {
			return false
		}
	}
	return true
}

func allSucceeded(acc *accumulator) bool {
	for _, o := range acc.received {
		if _, ok := o.(PartSuccess); !ok {
			return false
		}
	}
	return true
}
