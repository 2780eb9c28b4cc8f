package api

// Media is a non-owning handle to a playable element tracked by the
// coordinator. The coordinator may pause and release it during the
// preparing phase, but never destroys it; the element's lifetime stays
// with its original owner.
type Media interface {
	// Attached reports whether the element is still connected to the
	// visible tree. Detached elements are skipped by the abort sweep.
	Attached() bool

	// Playing reports whether the element is currently playing.
	Playing() bool

	// Pause stops playback. Called only while Playing.
	Pause()

	// Release detaches the element's source and frees its buffers.
	Release()
}
