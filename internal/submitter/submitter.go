// Package submitter turns a form submit event into one JSON POST to the
// submission endpoint and reflects the outcome on the page's status element.
//
// The host page is an external collaborator: it supplies the submit Event,
// the Form values and the StatusDisplay. Nothing is validated, retried or
// deduplicated; every submit produces exactly one request.
package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/formpost/internal/domain/model"
	"github.com/okian/formpost/pkg/logger"
	"github.com/okian/formpost/pkg/metrics"
)

// Endpoint is the address submissions are posted to.
const Endpoint = "https://h4xcc6n3ca.execute-api.us-west-2.amazonaws.com/prod"

// Status texts written to the display.
const (
	SuccessMessage = "Form submitted!"
	failurePrefix  = "Error: "
)

const (
	contentTypeJSON = "application/json"
	requestModeCORS = "cors"
)

// Submitter posts submission records to the endpoint.
type Submitter struct {
	endpoint string
	client   *http.Client
	origin   string
	logger   logger.Logger
}

// Option applies a configuration option to the Submitter.
type Option func(*Submitter)

// WithEndpoint overrides the compiled-in endpoint. Used to point the
// submitter at a test server.
func WithEndpoint(url string) Option {
	return func(s *Submitter) {
		if url != "" {
			s.endpoint = url
		}
	}
}

// WithHTTPClient sets the client used for the POST.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Submitter) {
		if c != nil {
			s.client = c
		}
	}
}

// WithOrigin sets the default Origin header sent with cross-origin requests.
// A per-request origin from ContextWithOrigin takes precedence.
func WithOrigin(origin string) Option {
	return func(s *Submitter) {
		s.origin = origin
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Submitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Submitter. The default client has no timeout; the
// caller's context is the only bound on the request.
func New(opts ...Option) *Submitter {
	s := &Submitter{
		endpoint: Endpoint,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("submitter")
	}
	return s
}

// Endpoint returns the address the submitter posts to.
func (s *Submitter) Endpoint() string { return s.endpoint }

// HandleSubmit is the submit handler: it suppresses the default action,
// reads the form, posts the record and renders the outcome on display.
func (s *Submitter) HandleSubmit(ctx context.Context, ev Event, form Form, display StatusDisplay) Result {
	if ev != nil {
		ev.PreventDefault()
	}

	res := s.Send(ctx, ReadRecord(form))
	if !res.OK() {
		s.logger.Warn(ctx, "post error",
			logger.String("endpoint", s.endpoint),
			logger.Error(res.Err),
		)
	}
	Render(display, res)
	return res
}

// Send posts rec once and classifies the response. The response body is
// discarded.
func (s *Submitter) Send(ctx context.Context, rec model.SubmissionRecord) Result {
	start := time.Now()
	res := s.send(ctx, rec)

	metrics.RecordSendLatency(float64(time.Since(start).Milliseconds()))
	if res.OK() {
		metrics.RecordSubmissionSent(metrics.OutcomeSuccess)
	} else {
		metrics.RecordSubmissionSent(metrics.OutcomeFailure)
	}
	return res
}

func (s *Submitter) send(ctx context.Context, rec model.SubmissionRecord) Result {
	body, err := json.Marshal(rec)
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrEncode, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrTransport, err))
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Sec-Fetch-Mode", requestModeCORS)
	if origin := s.originFor(ctx); origin != "" {
		req.Header.Set("Origin", origin)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrTransport, err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Debug(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return failed(&StatusError{Code: resp.StatusCode})
	}

	s.logger.Debug(ctx, "form submitted",
		logger.String("endpoint", s.endpoint),
		logger.Int("status", resp.StatusCode),
	)
	return succeeded()
}

type originKey struct{}

// ContextWithOrigin attaches the host page's origin to ctx.
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func (s *Submitter) originFor(ctx context.Context) string {
	if origin, ok := ctx.Value(originKey{}).(string); ok && origin != "" {
		return origin
	}
	return s.origin
}

// Render writes res to display: the confirmation in the success style, or
// the failure description in the failure style.
func Render(display StatusDisplay, res Result) {
	if display == nil {
		return
	}
	if res.OK() {
		display.SetText(SuccessMessage)
		display.SetStyle(SuccessStyle)
		return
	}
	display.SetText(failurePrefix + res.Description())
	display.SetStyle(FailureStyle)
}
