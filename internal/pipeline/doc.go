// Package pipeline drives the asynchronous submit/loading/navigate
// life cycle around the submission payload.
//
// ARCHITECTURE:
//
// Two independent state machines share one Pipeline instance:
//
//   - Submission: Idle -> Submitting -> Succeeded | Failed. Exactly
//     one submission may be in flight; a second Submit while
//     Submitting is rejected without mutating anything. On success
//     the parsed response body is handed to the Navigator exactly
//     once. On failure the pipeline stores a human-readable message
//     and does not navigate. No automatic retry.
//   - Reference lookup: Idle -> Loading -> Succeeded | Failed. A
//     one-shot request resolving the reference id to metadata fields.
//     It never blocks or interacts with the submission machine.
//
// Loading is set synchronously when Submit is accepted and is cleared
// before the terminal state is recorded, on every exit path.
//
// Issued requests are not cancellable. Instead, each accepted request
// captures a generation number; Close (or a superseding request)
// bumps it, and a response whose generation no longer matches is
// dropped without mutating pipeline state. This makes responses that
// arrive after teardown a guaranteed no-op.
package pipeline
