package benchreport

import "errors"

// ErrMissingInput is returned by a batch stage whose upstream artifact
// does not exist. The stage writes nothing when it returns this error.
var ErrMissingInput = errors.New("missing input artifact")
