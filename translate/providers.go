package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBody caps how much of a provider response is read.
const maxResponseBody = 1 << 20

// doRequest executes one HTTP request and returns the response body.
// Non-2xx statuses are errors carrying a truncated body excerpt.
func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ---------------------------------------------------------------------------
// Google Translate (free web endpoints — the default provider)
// ---------------------------------------------------------------------------

// defaultGoogleEndpoints are the known mirrors of the free translate_a
// API. They are tried in sequence to tolerate mirror/CDN instability.
var defaultGoogleEndpoints = []string{
	"https://translate.googleapis.com/translate_a/single",
	"https://clients5.google.com/translate_a/single",
}

type googleAdapter struct {
	// Endpoints overrides the default mirror list (tests, self-hosting).
	Endpoints []string
}

func (*googleAdapter) ID() string { return ProviderGoogle }

func (g *googleAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	endpoints := g.Endpoints
	if len(endpoints) == 0 {
		endpoints = defaultGoogleEndpoints
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", req.SourceLang)
	q.Set("tl", req.TargetLang)
	q.Set("dt", "t")
	q.Set("q", req.Text)

	var lastErr error
	for _, endpoint := range endpoints {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := doRequest(client, httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		text, err := parseGoogleResponse(body)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(req.Text)) {
			lastErr = fmt.Errorf("provider returned the source text unchanged")
			continue
		}
		return text, nil
	}
	return "", lastErr
}

// parseGoogleResponse decodes the translate_a/single payload: a nested
// array whose first element holds [translated, original, ...] segments.
func parseGoogleResponse(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}
	segments, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected response shape: %s", truncate(string(body), 200))
	}
	var b strings.Builder
	for _, seg := range segments {
		pair, ok := seg.([]any)
		if !ok || len(pair) == 0 {
			continue
		}
		if text, ok := pair[0].(string); ok {
			b.WriteString(text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no translation segments in response")
	}
	return b.String(), nil
}

// ---------------------------------------------------------------------------
// MyMemory
// ---------------------------------------------------------------------------

type myMemoryAdapter struct {
	BaseURL string
}

func (*myMemoryAdapter) ID() string { return ProviderMyMemory }

func (m *myMemoryAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	base := m.BaseURL
	if base == "" {
		base = "https://api.mymemory.translated.net"
	}

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", req.SourceLang+"|"+req.TargetLang)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	body, err := doRequest(client, httpReq)
	if err != nil {
		return "", err
	}

	var parsed struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	text := strings.TrimSpace(parsed.ResponseData.TranslatedText)
	if text == "" {
		if parsed.ResponseDetails != "" {
			return "", fmt.Errorf("API error: %s", parsed.ResponseDetails)
		}
		return "", fmt.Errorf("empty translation in response")
	}
	// MyMemory echoes the source for unknown phrases — a no-op
	// translation is a failure, not a false success.
	if strings.EqualFold(text, strings.TrimSpace(req.Text)) {
		return "", fmt.Errorf("provider returned the source text unchanged")
	}
	return text, nil
}

// ---------------------------------------------------------------------------
// LibreTranslate
// ---------------------------------------------------------------------------

type libreTranslateAdapter struct {
	BaseURL string
}

func (*libreTranslateAdapter) ID() string { return ProviderLibreTranslate }

func (l *libreTranslateAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	base := l.BaseURL
	if base == "" {
		base = "https://libretranslate.com"
	}

	payload := map[string]string{
		"q":      req.Text,
		"source": req.SourceLang,
		"target": req.TargetLang,
		"format": "text",
	}
	if req.APIKey != "" {
		payload["api_key"] = req.APIKey
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/translate", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := doRequest(client, httpReq)
	if err != nil {
		return "", err
	}

	var parsed struct {
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("API error: %s", parsed.Error)
	}
	if strings.TrimSpace(parsed.TranslatedText) == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return parsed.TranslatedText, nil
}

// ---------------------------------------------------------------------------
// DeepL
// ---------------------------------------------------------------------------

type deepLAdapter struct {
	BaseURL string
}

func (*deepLAdapter) ID() string { return ProviderDeepL }

func (d *deepLAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	if req.APIKey == "" {
		return "", fmt.Errorf("API key required")
	}
	base := d.BaseURL
	if base == "" {
		base = "https://api-free.deepl.com"
	}

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("source_lang", strings.ToUpper(req.SourceLang))
	form.Set("target_lang", strings.ToUpper(req.TargetLang))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+req.APIKey)

	body, err := doRequest(client, httpReq)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		if parsed.Message != "" {
			return "", fmt.Errorf("API error: %s", parsed.Message)
		}
		return "", fmt.Errorf("no translations in response")
	}
	return parsed.Translations[0].Text, nil
}

// ---------------------------------------------------------------------------
// Yandex Translate
// ---------------------------------------------------------------------------

type yandexAdapter struct {
	BaseURL string
}

func (*yandexAdapter) ID() string { return ProviderYandex }

func (y *yandexAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	if req.APIKey == "" {
		return "", fmt.Errorf("API key required")
	}
	base := y.BaseURL
	if base == "" {
		base = "https://translate.api.cloud.yandex.net"
	}

	payload := struct {
		SourceLang string   `json:"sourceLanguageCode"`
		TargetLang string   `json:"targetLanguageCode"`
		Format     string   `json:"format"`
		Texts      []string `json:"texts"`
	}{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Format:     "PLAIN_TEXT",
		Texts:      []string{req.Text},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/translate/v2/translate", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+req.APIKey)

	body, err := doRequest(client, httpReq)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		if parsed.Message != "" {
			return "", fmt.Errorf("API error: %s", parsed.Message)
		}
		return "", fmt.Errorf("no translations in response")
	}
	return parsed.Translations[0].Text, nil
}

// ---------------------------------------------------------------------------
// Microsoft Translator
// ---------------------------------------------------------------------------

type microsoftAdapter struct {
	BaseURL string
}

func (*microsoftAdapter) ID() string { return ProviderMicrosoft }

func (m *microsoftAdapter) Translate(ctx context.Context, client *http.Client, req Request) (string, error) {
	if req.APIKey == "" {
		return "", fmt.Errorf("API key required")
	}
	base := m.BaseURL
	if base == "" {
		base = "https://api.cognitive.microsofttranslator.com"
	}

	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("from", req.SourceLang)
	q.Set("to", req.TargetLang)

	data, err := json.Marshal([]map[string]string{{"Text": req.Text}})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/translate?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", req.APIKey)

	body, err := doRequest(client, httpReq)
	if err != nil {
		return "", err
	}

	var parsed []struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Errors come back as an object, not an array.
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return "", fmt.Errorf("no translations in response")
	}
	return parsed[0].Translations[0].Text, nil
}
