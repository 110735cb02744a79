package usecase

import "errors"

// ErrConfiguration marks a run that was aborted before any archive or upload
// work because a precondition failed.
var ErrConfiguration = errors.New("configuration error")
