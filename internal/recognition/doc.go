// Package recognition runs OCR requests in the background and reports their
// progress as an ordered event stream.
//
// A Runner accepts one Request at a time. Start validates the request,
// launches a goroutine and returns a *Task immediately. The task decides
// whether the input is a single image (one unit) or a PDF document (one unit
// per rasterized page), then recognizes the units strictly in order.
//
// # Events
//
// For a request with N units a task emits, in order:
//
//	LogEvent     "Processing unit i/N..."        before unit i
//	ProgressEvent{i, N}                          after unit i
//	LogEvent     "Estimated time remaining: ..." documents only, from unit 2 while units remain
//	LogEvent     "Recognition complete! Elapsed: ..." (success)
//	Result       {text, true}
//
// Any failure stops the remaining units and ends the stream with
//
//	LogEvent     "Recognition failed: <cause>" (error)
//	ProgressEvent{0, N}
//	Result       {"Error: <cause>", false}
//
// No text from units completed before the failure is kept. Nothing is
// emitted after the Result.
//
// Subscribers receive the full stream from the first event no matter when
// they subscribe, and the task never blocks on a slow subscriber.
//
// # Lifecycle
//
// Tasks move Running -> Succeeded or Running -> Failed. A second Start while
// a task is running is rejected with ErrBusy; a finished task is never
// reused. Close cancels the running task, which then fails with the
// cancellation as its cause, and waits for its terminal result.
package recognition
