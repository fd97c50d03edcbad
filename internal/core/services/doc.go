// Package services implements the driving port interfaces.
//
// The analysis pipeline lives here: the continuation driver that keeps a
// truncated generation going, the repair step that turns raw output into
// payloads, the classifier and sequencer that reconcile payloads against the
// real project files, and the merger that always produces a result. Services
// depend only on driven ports and hold no state between calls apart from the
// per-project single-flight group.
package services
