package postings

import "github.com/meta-toolkit/metago/metaerr"

// errEmptyStream mirrors the token_stream contract's empty-stream failure:
// calling Next on an exhausted stream is a programming error, not expected
// control flow, so it is reported rather than silently returning zeros.
var errEmptyStream = metaerr.Wrap(metaerr.ErrIndexFormat, nil, "postings_stream: Next called on exhausted stream")
