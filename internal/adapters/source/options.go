package source

import (
	"time"

	"github.com/spf13/afero"

	"github.com/okian/handicap/internal/domain/naming"
)

// Option applies a configuration option to a source.
type Option func(*options)

type options struct {
	suffix  string
	timeout time.Duration
	fs      afero.Fs
}

func defaultOptions() options {
	return options{
		suffix: naming.DefaultSuffix,
		fs:     afero.NewOsFs(),
	}
}

// WithSuffix sets the document name suffix, "HCP.json" by default.
func WithSuffix(suffix string) Option {
	return func(o *options) {
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

// WithTimeout bounds one HTTP fetch. Fetches are unbounded unless a positive timeout is set.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithFs sets the filesystem a FileSource reads from.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}
