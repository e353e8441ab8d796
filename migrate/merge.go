package migrate

// mergeOutcomes interleaves the Binder's outcomes with the Assembler's
// late failures (uploads that never made it to the Binder) into a single
// stream, in whichever order they arrive. No ordering across uploads is
// promised, per spec.md §4.5.
func mergeOutcomes(bound <-chan Outcome, assemblyFailures <-chan UploadFailure) <-chan Outcome {
	out := make(chan Outcome)

	go func() {
		defer close(out)

		for bound != nil || assemblyFailures != nil {
			select {
			case o, ok := <-bound:
				if !ok {
					bound = nil
					continue
				}
				out <- o
			case f, ok := <-assemblyFailures:
				if !ok {
					assemblyFailures = nil
					continue
				}
				out <- f
			}
		}
	}()

	return out
}
