package bloom

import "github.com/zeebo/errs"

// Error is the error class for this package.
var Error = errs.Class("bloom")

// ErrTruncated is returned by Decode when data is too short to contain a
// valid filter header and bitmap.
var ErrTruncated = Error.New("truncated bloom index")
