package export

import "errors"

var (
	// ErrNoVideoTrack reports a source without a usable video stream.
	ErrNoVideoTrack = errors.New("source has no video track")

	// ErrExportFailed reports an encoder that terminated abnormally or
	// produced no output.
	ErrExportFailed = errors.New("export failed")

	// ErrEncoderUnavailable reports that no standalone encoder binary was
	// found for the fast reverse path. Callers fall back instead of
	// surfacing it.
	ErrEncoderUnavailable = errors.New("external encoder unavailable")
)
