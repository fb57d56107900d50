// Package translate implements machine translation of mod strings over
// multiple interchangeable HTTP providers: Google Translate (free web
// endpoints), MyMemory, LibreTranslate, DeepL, Yandex Translate, and
// Microsoft Translator.
//
// Every call follows the same uniform contract: the requested provider's
// adapter runs first; on failure a static, provider-specific ordered
// fallback chain is tried, stopping at the first success. A lightweight
// connectivity probe runs before any provider so a network outage fails
// fast instead of burning through the whole chain. There are no retries
// beyond the fixed chain — one attempt per adapter (the free Google
// adapter tries its known mirror endpoints in sequence before counting as
// failed).
package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle         = "google"
	ProviderMyMemory       = "mymemory"
	ProviderLibreTranslate = "libretranslate"
	ProviderDeepL          = "deepl"
	ProviderYandex         = "yandex"
	ProviderMicrosoft      = "microsoft"
)

// Providers lists all known provider IDs in display order.
func Providers() []string {
	return []string{
		ProviderGoogle,
		ProviderMyMemory,
		ProviderLibreTranslate,
		ProviderDeepL,
		ProviderYandex,
		ProviderMicrosoft,
	}
}

// DefaultFallbacks is the static fallback table keyed by the originally
// requested provider. Paid-tier providers fall back to the other paid
// tiers before the free ones; free providers stay within the free tier.
func DefaultFallbacks() map[string][]string {
	return map[string][]string{
		ProviderDeepL:          {ProviderMicrosoft, ProviderYandex, ProviderGoogle, ProviderMyMemory},
		ProviderYandex:         {ProviderDeepL, ProviderMicrosoft, ProviderGoogle, ProviderMyMemory},
		ProviderMicrosoft:      {ProviderDeepL, ProviderYandex, ProviderGoogle, ProviderMyMemory},
		ProviderGoogle:         {ProviderMyMemory, ProviderLibreTranslate},
		ProviderMyMemory:       {ProviderGoogle, ProviderLibreTranslate},
		ProviderLibreTranslate: {ProviderGoogle, ProviderMyMemory},
	}
}

// ---------------------------------------------------------------------------
// Request / Response
// ---------------------------------------------------------------------------

// Request is the uniform translation request.
type Request struct {
	// Text is the source string to translate.
	Text string
	// SourceLang and TargetLang are ISO codes (e.g. "en", "ru").
	SourceLang string
	TargetLang string
	// Provider is the requested provider ID.
	Provider string
	// APIKey is the credential for providers that mandate one.
	APIKey string
}

// Response is the uniform translation result.
type Response struct {
	// Success reports whether any adapter produced a translation.
	Success bool
	// Text is the translated string when Success is true.
	Text string
	// Err describes the failure when Success is false.
	Err string
	// Provider is the adapter that actually served the result. It may
	// differ from the requested provider after fallback.
	Provider string
}

// Adapter maps the uniform request onto one provider's wire API.
type Adapter interface {
	// ID returns the provider ID.
	ID() string
	// Translate performs a single attempt. A non-nil error means this
	// adapter failed and the orchestrator may fall through.
	Translate(ctx context.Context, client *http.Client, req Request) (string, error)
}

// ---------------------------------------------------------------------------
// Service (orchestrator)
// ---------------------------------------------------------------------------

const (
	// DefaultProbeURL is a known-good external host used for the
	// connectivity pre-check. Any HTTP response counts as reachable.
	DefaultProbeURL = "http://www.gstatic.com/generate_204"

	probeTimeout     = 5 * time.Second
	translateTimeout = 60 * time.Second
)

// Service executes translation requests with ordered provider fallback.
// A Service holds no per-request state: concurrent Translate calls need no
// coordination and are never deduplicated.
type Service struct {
	// Client performs translation calls.
	Client *http.Client
	// Probe performs the connectivity pre-check (short timeout).
	Probe *http.Client
	// ProbeURL is the reachability target.
	ProbeURL string
	// Adapters maps provider ID to adapter.
	Adapters map[string]Adapter
	// Fallbacks maps the requested provider to its ordered chain.
	Fallbacks map[string][]string
}

// New returns a Service wired with all known adapters and the default
// fallback table. proxyURL optionally routes provider calls through an
// HTTP/HTTPS proxy; when empty the standard environment variables apply.
func New(proxyURL string) *Service {
	return &Service{
		Client:   makeHTTPClient(proxyURL, translateTimeout),
		Probe:    makeHTTPClient(proxyURL, probeTimeout),
		ProbeURL: DefaultProbeURL,
		Adapters: map[string]Adapter{
			ProviderGoogle:         &googleAdapter{},
			ProviderMyMemory:       &myMemoryAdapter{},
			ProviderLibreTranslate: &libreTranslateAdapter{},
			ProviderDeepL:          &deepLAdapter{},
			ProviderYandex:         &yandexAdapter{},
			ProviderMicrosoft:      &microsoftAdapter{},
		},
		Fallbacks: DefaultFallbacks(),
	}
}

// SetBaseURL points one provider's adapter at a custom endpoint, e.g. a
// self-hosted LibreTranslate instance or the paid DeepL API host. An empty
// URL or an unknown provider leaves the default endpoints in place.
func (s *Service) SetBaseURL(providerID, baseURL string) {
	if baseURL == "" {
		return
	}
	switch a := s.Adapters[providerID].(type) {
	case *googleAdapter:
		a.Endpoints = []string{baseURL}
	case *myMemoryAdapter:
		a.BaseURL = baseURL
	case *libreTranslateAdapter:
		a.BaseURL = baseURL
	case *deepLAdapter:
		a.BaseURL = baseURL
	case *yandexAdapter:
		a.BaseURL = baseURL
	case *microsoftAdapter:
		a.BaseURL = baseURL
	}
}

// Translate runs one request against the requested provider and its
// fallback chain. The result is all-or-nothing: a cancelled context aborts
// at the next network-wait boundary and never partially applies.
func (s *Service) Translate(ctx context.Context, req Request) Response {
	if strings.TrimSpace(req.Text) == "" {
		return Response{Err: "nothing to translate: empty input text", Provider: req.Provider}
	}

	primary, ok := s.Adapters[req.Provider]
	if !ok {
		return Response{Err: fmt.Sprintf("unknown provider %q", req.Provider), Provider: req.Provider}
	}

	if err := s.checkConnectivity(ctx); err != nil {
		return Response{Err: fmt.Sprintf("no internet connection: %v", err), Provider: req.Provider}
	}

	var attempts []string
	try := func(a Adapter) *Response {
		text, err := a.Translate(ctx, s.Client, req)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", a.ID(), err))
			return nil
		}
		return &Response{Success: true, Text: text, Provider: a.ID()}
	}

	if resp := try(primary); resp != nil {
		return *resp
	}
	for _, id := range s.Fallbacks[req.Provider] {
		fallback, ok := s.Adapters[id]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, fmt.Sprintf("cancelled: %v", err))
			break
		}
		if resp := try(fallback); resp != nil {
			return *resp
		}
	}

	return Response{
		Err:      "all providers failed: " + strings.Join(attempts, "; "),
		Provider: req.Provider,
	}
}

// checkConnectivity performs the reachability probe. Any HTTP response,
// regardless of status, counts as online — the probe tests the network,
// not the endpoint's semantics.
func (s *Service) checkConnectivity(ctx context.Context) error {
	probeURL := s.ProbeURL
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return err
	}
	client := s.Probe
	if client == nil {
		client = s.Client
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	return nil
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
