// Package translate implements machine translation of dictionary strings
// using HTTP API-based AI providers: Google AI (Gemini), Groq, Custom
// OpenAI, and Ollama, plus an offline stub for dry runs.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/langsync/langsync/langtag"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderStub         = "stub"
	ProviderGoogle       = "google"
	ProviderGroq         = "groq"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an AI translation service.
type Provider struct {
	// ID is the provider identifier (google, groq, etc.).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.5-flash",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Model:   "",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// System prompt
// ---------------------------------------------------------------------------

const defaultSystemPrompt = `You are a professional translator specializing in software and product localization. You are translating a single UI string for a software application.

CONTEXT AWARENESS:
- The audience is software users
- Tone: professional yet approachable, clear and concise
- Use IT/software terminology that is standard in the {{targetLang}} tech community

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in {{targetLang}}, not word-for-word
- Use idiomatic expressions natural to {{targetLang}}, not literal translations
- Keep brand names and proper nouns unchanged
- Do NOT translate technical terms that are standard in English (unless they have established translations)

TECHNICAL REQUIREMENTS:
- Preserve all format specifiers and interpolation variables exactly as-is (%s, %d, {{name}}, {0}, etc.).
- Preserve leading/trailing whitespace and punctuation patterns.
- Return ONLY the translated string, no quotes, no explanations, no markdown code blocks.`

// ---------------------------------------------------------------------------
// Client options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Provider is the AI provider configuration.
	Provider Provider
	// Timeout is the per-request timeout (overrides provider timeout if set).
	Timeout time.Duration
	// MaxRetries is the maximum number of retries on rate limit (429). Default: 3.
	MaxRetries int
	// SystemPrompt overrides the default system prompt.
	SystemPrompt string
	// Verbose enables detailed logging.
	Verbose bool
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if o.Provider.Timeout > 0 {
		return o.Provider.Timeout
	}
	return 120 * time.Second
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

// resolvedPrompt returns the system prompt with {{targetLang}} replaced.
func (o *Options) resolvedPrompt(target string) string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", langName(target))
}

// langName renders a code as an English language name for prompts, falling
// back to the raw code for unknown tags.
func langName(code string) string {
	if name := langtag.EnglishName(code); name != "" {
		return name
	}
	return code
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client translates single strings through the configured provider.
type Client struct {
	opts Options
}

// New validates the options, fills provider defaults and returns a ready
// client.
func New(opts Options) (*Client, error) {
	prov := &opts.Provider
	if prov.ID == "" {
		return nil, fmt.Errorf("translation provider not set")
	}
	if prov.ID == ProviderStub {
		return nil, fmt.Errorf("stub provider has no HTTP client; use Stub directly")
	}

	if def, ok := DefaultProviders()[prov.ID]; ok {
		if prov.BaseURL == "" {
			prov.BaseURL = def.BaseURL
		}
		if prov.Model == "" {
			prov.Model = def.Model
		}
		if prov.Name == "" {
			prov.Name = def.Name
		}
		if prov.Timeout == 0 {
			prov.Timeout = def.Timeout
		}
	}

	if prov.BaseURL == "" {
		return nil, fmt.Errorf("provider %s: base URL not set", prov.ID)
	}
	if prov.Model == "" {
		return nil, fmt.Errorf("provider %s: model not set", prov.ID)
	}

	return &Client{opts: opts}, nil
}

// Name returns the provider display name.
func (c *Client) Name() string {
	if c.opts.Provider.Name != "" {
		return c.opts.Provider.Name
	}
	return c.opts.Provider.ID
}

// Translate translates text between two languages through the provider.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	systemPrompt := c.opts.resolvedPrompt(to)
	userPrompt := fmt.Sprintf("Translate the following %s text to %s:\n\n%s",
		langName(from), langName(to), text)

	out, err := callProvider(ctx, c.opts.Provider, systemPrompt, userPrompt,
		c.opts.effectiveTimeout(), c.opts.effectiveMaxRetries(), c.opts.Verbose)
	if err != nil {
		return "", err
	}

	cleaned := cleanResponse(out)
	if strings.TrimSpace(cleaned) == "" {
		return "", fmt.Errorf("provider %s returned an empty translation", c.opts.Provider.ID)
	}
	return cleaned, nil
}

// ---------------------------------------------------------------------------
// Stub provider
// ---------------------------------------------------------------------------

// Stub is an offline translator that echoes the source text behind the
// target language's placeholder marker. Its output is recognized as a
// placeholder, so a later run with a real provider picks the entries up
// again.
type Stub struct {
	// Marker overrides the marker per target language. Nil uses the
	// standard "[needs-xx] " prefix.
	Marker func(lang string) string
}

// Name identifies the stub in reports.
func (s *Stub) Name() string { return ProviderStub }

// Translate returns the source text tagged with the target's marker.
func (s *Stub) Translate(_ context.Context, text, _, to string) (string, error) {
	marker := langtag.DefaultMarker(to)
	if s.Marker != nil {
		marker = s.Marker(to)
	}
	return marker + text, nil
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy flag and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
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

// ---------------------------------------------------------------------------
// API format types
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat   apiFormat = iota // OpenAI chat/completions
	formatGeminiNative                  // Google Gemini generateContent
)

func formatFor(providerID string) apiFormat {
	if providerID == ProviderGoogle {
		return formatGeminiNative
	}
	// Groq, Ollama, Custom OpenAI and anything unknown speak the OpenAI
	// chat format.
	return formatOpenAIChat
}

// ---------------------------------------------------------------------------
// Request builders for each API format
// ---------------------------------------------------------------------------

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		Stream:      false,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// buildHTTPRequest constructs the endpoint, headers, and body for a provider.
func buildHTTPRequest(prov Provider, systemPrompt, userPrompt string, format apiFormat) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var endpoint string
	var body []byte
	var err error

	switch format {
	case formatGeminiNative:
		// Google AI: POST /v1beta/models/{model}:generateContent
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimRight(prov.BaseURL, "/"), prov.Model)
		if prov.APIKey != "" {
			headers["x-goog-api-key"] = prov.APIKey
		}
		body, err = buildGeminiRequest(systemPrompt, userPrompt, 0.3)

	default: // formatOpenAIChat
		baseURL := strings.TrimRight(prov.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			endpoint = baseURL + "/chat/completions"
		} else {
			endpoint = baseURL
		}
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt, 0.3)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}

// ---------------------------------------------------------------------------
// Response parsers (multi-format)
// ---------------------------------------------------------------------------

// extractResponseText tries all known response formats and returns the text.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	// Check for API error
	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// 1. OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// 2. Gemini format: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	// 3. Simple response field (Ollama native, normalized proxies)
	if resp, ok := raw["response"].(string); ok {
		return resp, nil
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// ---------------------------------------------------------------------------
// Rate limit: parse 429 response for retry delay
// ---------------------------------------------------------------------------

// parseRetryDelay extracts the retry delay from a 429 response body.
// Looks for Google's RetryInfo detail with retryDelay field.
// Returns the delay to wait, defaulting to 60s + 5s buffer.
func parseRetryDelay(body []byte) time.Duration {
	const defaultDelay = 65 * time.Second // 60s + 5s buffer

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			// Parse duration like "30s", "45.123s"
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
			}
		}
	}

	return defaultDelay
}

// ---------------------------------------------------------------------------
// Provider call with retries
// ---------------------------------------------------------------------------

// callProvider sends a prompt to the provider and returns the raw response
// text. Transport errors and 5xx responses are retried with exponential
// backoff; 429 responses wait out the advertised retry delay.
func callProvider(ctx context.Context, prov Provider, systemPrompt, userPrompt string, timeout time.Duration, maxRetries int, verbose bool) (string, error) {
	endpoint, headers, body, err := buildHTTPRequest(prov, systemPrompt, userPrompt, formatFor(prov.ID))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := makeHTTPClient(prov.Proxy, timeout)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if verbose {
			log.Printf("[DEBUG] %s attempt %d: POST %s", prov.ID, attempt+1, endpoint)
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryDelay := parseRetryDelay(respBody)
			if verbose {
				log.Printf("[WARN] 429 rate limited, waiting %v before retry (attempt %d/%d)", retryDelay, attempt+1, maxRetries)
			}
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries: %s", maxRetries, truncate(string(respBody), 300))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

// ---------------------------------------------------------------------------
// Response cleaning
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:[a-z]+)?\\s*(.*?)\\s*```")

// cleanResponse strips the decoration AI models wrap answers in: markdown
// code fences and a single layer of quoting around the whole string.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)

	if m := markdownCodeBlock.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			s = unquoted
		}
	}

	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
