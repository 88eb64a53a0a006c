package driven

// DeviceLabelProvider supplies the human-readable device name embedded in
// fork filenames, e.g. "iPad-Shop-04".
type DeviceLabelProvider interface {
	// CurrentLabel returns the device label. Implementations return a
	// stable fallback rather than an empty string.
	CurrentLabel() string
}
