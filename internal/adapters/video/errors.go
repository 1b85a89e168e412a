package video

import "errors"

// ErrOpenVideo indicates the clip could not be opened for reading.
var ErrOpenVideo = errors.New("video: cannot open")
