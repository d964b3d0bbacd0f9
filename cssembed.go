// Package cssembed rewrites the url(...) references of a stylesheet into
// base64 data URIs, producing a stylesheet without external asset
// dependencies. Local references are read relative to a base directory,
// remote ones are downloaded over HTTP.
package cssembed

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var defaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:73.0) Gecko/20100101 Firefox/73.0"

// Config is the configuration for Embedder.
type Config struct {
	// BaseDir is the directory local URLs are resolved against. When empty,
	// the directory of the source file is used.
	BaseDir string

	// FailOnMissingURL aborts the whole run when an asset can't be found
	// or downloaded. When false the URL is only warned about.
	FailOnMissingURL bool

	// SkipURLsLargerThan is a size expression such as "500KB". Assets
	// larger than it are left as they are.
	SkipURLsLargerThan string

	// Inclusive switches from opt-out (`/* noembed */`) to opt-in
	// (`/* embed */`) marking.
	Inclusive bool

	// UseMimeTypeSniffing prefers content sniffing over file extension
	// when a Sniffer is available.
	UseMimeTypeSniffing bool
	Sniffer             Sniffer

	UserAgent        string
	EnableLog        bool
	EnableVerboseLog bool
	Logger           logrus.FieldLogger

	Transport           http.RoundTripper
	RequestTimeout      time.Duration
	MaxRetries          int
	SkipTLSVerification bool
	MaxConcurrentFiles  int
}

// DefaultConfig is the configuration used when nothing is customized.
var DefaultConfig = Config{
	FailOnMissingURL:    true,
	UseMimeTypeSniffing: true,
	Sniffer:             FileTypeSniffer{},
	EnableLog:           true,
	RequestTimeout:      time.Minute,
	MaxConcurrentFiles:  4,
}

// Embedder is the core of cssembed, which resolves the URLs of a
// stylesheet then embeds them as data URIs. It's safe to share between
// goroutines once validated.
type Embedder struct {
	Config

	isValidated bool
	sniffing    bool
	hasMaxSize  bool
	maxSize     uint64
	logger      logrus.FieldLogger
	httpClient  *http.Client
}

// New creates a validated Embedder from cfg.
func New(cfg Config) (*Embedder, error) {
	e := &Embedder{Config: cfg}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate prepares Embedder to make sure its configurations
// are valid and ready to use. Must be run at least once before
// embedding started.
func (e *Embedder) Validate() error {
	if e.UserAgent == "" {
		e.UserAgent = defaultUserAgent
	}

	if e.MaxConcurrentFiles <= 0 {
		e.MaxConcurrentFiles = 1
	}

	if e.MaxRetries < 0 {
		e.MaxRetries = 0
	}

	e.hasMaxSize, e.maxSize = false, 0
	if e.SkipURLsLargerThan != "" {
		size, err := humanize.ParseBytes(e.SkipURLsLargerThan)
		if err != nil {
			return errors.Wrapf(err, "invalid size limit %q", e.SkipURLsLargerThan)
		}
		e.hasMaxSize, e.maxSize = true, size
	}

	// Sniffing availability is decided once, call sites only check the flag.
	e.sniffing = e.UseMimeTypeSniffing && e.Sniffer != nil

	e.logger = e.Logger
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}

	if e.Transport == nil {
		if e.SkipTLSVerification {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
			e.Transport = transport
		} else {
			e.Transport = http.DefaultTransport
		}
	}

	e.httpClient = &http.Client{
		Timeout:   e.RequestTimeout,
		Transport: e.Transport,
	}

	e.isValidated = true
	return nil
}
