// Package reveal gates a card's message behind a "blow out the candles"
// gesture detected on a microphone.
//
// A Controller moves through a single State value:
//
//	Loading ──► Error
//	   │
//	   ▼
//	  Idle ──► Listening ──► Blown
//
// Loading and Idle are driven by the caller (Load). Listening is entered on
// an explicit Listen call, which opens the audio Device and samples its
// frequency data once per frame on a Scheduler. The first frame whose mean
// bin magnitude exceeds the threshold moves the controller to Blown, which,
// like Error, is terminal.
//
// Close releases the audio stream and cancels any pending frame regardless
// of the current state.
package reveal
