//go:build !omt

package omt

import "github.com/zsiec/omt-send-test/internal/errors"

// Available reports whether the binary was built against libomt.
const Available = false

// Open returns an error: this binary was built without the omt build tag.
func Open() (Transport, error) {
	return nil, errors.New(errors.ErrorTypeTransport, "built without libomt; rebuild with -tags omt")
}
