package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/tidwall/gjson"
)

var fixedNow = time.UnixMilli(1700000000000)

// recorder captures the last request a fake provider received
type recorder struct {
	calls   atomic.Int32
	method  atomic.Value
	path    atomic.Value
	headers atomic.Value
	body    atomic.Value
}

func (r *recorder) header(name string) string {
	h, _ := r.headers.Load().(http.Header)
	return h.Get(name)
}

func (r *recorder) rawBody() []byte {
	b, _ := r.body.Load().([]byte)
	return b
}

// fakeProvider serves status and body for every request
func fakeProvider(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		rec.method.Store(r.Method)
		rec.path.Store(r.URL.Path)
		rec.headers.Store(r.Header.Clone())
		b, _ := io.ReadAll(r.Body)
		rec.body.Store(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func chatCompletion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func anthropicMessage(text string) string {
	b, _ := json.Marshal(map[string]any{
		"content": []any{map[string]any{"type": "text", "text": text}},
	})
	return string(b)
}

func newAdapter(kind Kind, baseURL string) Adapter {
	opts := []Option{WithBaseURL(baseURL), WithClock(func() time.Time { return fixedNow })}
	switch kind {
	case KindAnthropic:
		return NewAnthropic(opts...)
	case KindOpenRouter:
		return NewOpenRouter(opts...)
	default:
		return NewOpenAI(opts...)
	}
}

func successBody(kind Kind, text string) string {
	if kind == KindAnthropic {
		return anthropicMessage(text)
	}
	return chatCompletion(text)
}

func TestAnthropicTranslateHello(t *testing.T) {
	srv, rec := fakeProvider(t, http.StatusOK, anthropicMessage("你好"))
	a := newAdapter(KindAnthropic, srv.URL)

	req := TranslationRequest{
		Text:           "Hello",
		SourceLanguage: "en",
		TargetLanguage: "zh",
		ModelID:        "anthropic/claude-3-haiku-20240307",
		APIKey:         "test-anthropic-key",
	}
	resp, err := a.Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	want := TranslationResponse{
		TranslatedText: "你好",
		OriginalText:   "Hello",
		SourceLanguage: "en",
		TargetLanguage: "zh",
		ModelID:        "anthropic/claude-3-haiku-20240307",
		Timestamp:      fixedNow.UnixMilli(),
	}
	if *resp != want {
		t.Errorf("Translate() = %+v, want %+v", *resp, want)
	}

	if rec.path.Load() != "/messages" || rec.method.Load() != http.MethodPost {
		t.Errorf("request = %v %v", rec.method.Load(), rec.path.Load())
	}
	if got := rec.header("x-api-key"); got != "test-anthropic-key" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := rec.header("anthropic-version"); got != AnthropicVersion {
		t.Errorf("anthropic-version = %q", got)
	}
	if got := rec.header("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}

	body := rec.rawBody()
	if got := gjson.GetBytes(body, "model").String(); got != "claude-3-haiku-20240307" {
		t.Errorf("model = %q", got)
	}
	if got := gjson.GetBytes(body, "max_tokens").Int(); got != MaxTokens {
		t.Errorf("max_tokens = %d", got)
	}
	if got := gjson.GetBytes(body, "temperature").Float(); got != Temperature {
		t.Errorf("temperature = %v", got)
	}
	msgs := gjson.GetBytes(body, "messages").Array()
	if len(msgs) != 1 || msgs[0].Get("role").String() != "user" {
		t.Fatalf("messages = %s", gjson.GetBytes(body, "messages").Raw)
	}
	prompt := msgs[0].Get("content").String()
	if !strings.Contains(prompt, "Hello") || !strings.Contains(prompt, "英文") || !strings.Contains(prompt, "中文") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestOpenAITranslateRequestShape(t *testing.T) {
	srv, rec := fakeProvider(t, http.StatusOK, chatCompletion("  Bonjour \n"))
	a := newAdapter(KindOpenAI, srv.URL)

	resp, err := a.Translate(context.Background(), TranslationRequest{
		Text: "Hello", SourceLanguage: "en", TargetLanguage: "fr",
		ModelID: "openai/gpt-4o-mini", APIKey: "test-openai-key",
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.TranslatedText != "Bonjour" {
		t.Errorf("TranslatedText = %q, want trimmed", resp.TranslatedText)
	}
	if rec.path.Load() != "/chat/completions" {
		t.Errorf("path = %v", rec.path.Load())
	}
	if got := rec.header("Authorization"); got != "Bearer test-openai-key" {
		t.Errorf("Authorization = %q", got)
	}

	body := rec.rawBody()
	if got := gjson.GetBytes(body, "model").String(); got != "gpt-4o-mini" {
		t.Errorf("model = %q", got)
	}
	if got := gjson.GetBytes(body, "messages.#").Int(); got != 2 {
		t.Errorf("messages count = %d", got)
	}
	if got := gjson.GetBytes(body, "messages.0.role").String(); got != "system" {
		t.Errorf("first role = %q", got)
	}
	if got := gjson.GetBytes(body, "messages.1.content").String(); !strings.Contains(got, "fr") {
		t.Errorf("unknown language code should pass through, prompt = %q", got)
	}
	if got := gjson.GetBytes(body, "max_tokens").Int(); got != MaxTokens {
		t.Errorf("max_tokens = %d", got)
	}
}

func TestOpenRouterTranslateHeaders(t *testing.T) {
	srv, rec := fakeProvider(t, http.StatusOK, chatCompletion("你好"))
	a := newAdapter(KindOpenRouter, srv.URL)

	resp, err := a.Translate(context.Background(), TranslationRequest{
		Text: "Hello", SourceLanguage: "en", TargetLanguage: "zh",
		ModelID: "openrouter/anthropic/claude-3-haiku", APIKey: "test-or-key",
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.ModelID != "openrouter/anthropic/claude-3-haiku" {
		t.Errorf("ModelID = %q", resp.ModelID)
	}
	if got := gjson.GetBytes(rec.rawBody(), "model").String(); got != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q", got)
	}
	if got := rec.header("HTTP-Referer"); got != openRouterReferer {
		t.Errorf("HTTP-Referer = %q", got)
	}
	if got := rec.header("X-Title"); got != openRouterTitle {
		t.Errorf("X-Title = %q", got)
	}
	if got := rec.header("Authorization"); got != "Bearer test-or-key" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestTranslateFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    ErrorKind
		wantDetail  string
		wantMessage string
	}{
		{"unauthorized", 401, `{"error":{"message":"Incorrect API key"}}`, ErrorInvalidAPIKey, "Incorrect API key", ""},
		{"forbidden", 403, `{}`, ErrorInvalidAPIKey, "HTTP 403", ""},
		{"rate limited", 429, `{"error":{"message":"slow down"}}`, ErrorRateLimit, "slow down", ""},
		{"quota", 402, `{"error":{"message":"Insufficient credits"}}`, ErrorQuotaExceeded, "Insufficient credits", ""},
		{"server error without body", 500, ``, ErrorUnknown, "HTTP 500", "HTTP 500"},
		{"server error with message", 503, `{"error":{"message":"overloaded"}}`, ErrorUnknown, "overloaded", "overloaded"},
		{"empty completion", 200, `{"choices":[{"message":{"content":"   "}}],"content":[{"text":"  "}]}`, ErrorUnknown, "", MsgEmptyResponse},
		{"missing completion", 200, `{}`, ErrorUnknown, "", MsgEmptyResponse},
	}

	for _, kind := range Kinds() {
		for _, tt := range tests {
			t.Run(string(kind)+"/"+tt.name, func(t *testing.T) {
				srv, rec := fakeProvider(t, tt.status, tt.body)
				a := newAdapter(kind, srv.URL)

				resp, err := a.Translate(context.Background(), TranslationRequest{
					Text: "Hello", SourceLanguage: "en", TargetLanguage: "zh",
					ModelID: string(kind) + "/some-model", APIKey: "k",
				})
				if resp != nil {
					t.Errorf("Translate() response = %+v, want nil", resp)
				}
				var te *TranslationError
				if !errors.As(err, &te) {
					t.Fatalf("Translate() error = %v, want *TranslationError", err)
				}
				if te.Kind != tt.wantKind {
					t.Errorf("Kind = %v, want %v", te.Kind, tt.wantKind)
				}
				if tt.wantDetail != "" && te.Detail != tt.wantDetail {
					t.Errorf("Detail = %q, want %q", te.Detail, tt.wantDetail)
				}
				if tt.wantMessage != "" && te.Message != tt.wantMessage {
					t.Errorf("Message = %q, want %q", te.Message, tt.wantMessage)
				}
				if te.Provider != kind {
					t.Errorf("Provider = %v", te.Provider)
				}
				if n := rec.calls.Load(); n != 1 {
					t.Errorf("provider received %d calls, want exactly 1", n)
				}
			})
		}
	}
}

func TestTranslateTransportFailure(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			a := newAdapter(kind, url)
			_, err := a.Translate(context.Background(), TranslationRequest{ModelID: string(kind) + "/m", APIKey: "k"})
			var te *TranslationError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TranslationError", err)
			}
			if te.Kind != ErrorUnknown || te.Status != 0 || te.Cause == nil {
				t.Errorf("got %+v", te)
			}
		})
	}
}

func TestTranslateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	a := NewOpenAI(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := a.Translate(context.Background(), TranslationRequest{ModelID: "openai/gpt-4o", APIKey: "k"})
	var te *TranslationError
	if !errors.As(err, &te) || te.Kind != ErrorUnknown {
		t.Fatalf("error = %v, want UNKNOWN_ERROR", err)
	}
	if te.Cause == nil {
		t.Errorf("Cause = nil, want transport error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not enforced")
	}
}

func TestTestConnection(t *testing.T) {
	probes := []struct {
		kind   Kind
		method string
		path   string
	}{
		{KindOpenAI, http.MethodHead, "/models"},
		{KindAnthropic, http.MethodPost, "/messages"},
		{KindOpenRouter, http.MethodGet, "/models"},
	}

	for _, p := range probes {
		t.Run(string(p.kind)+" success", func(t *testing.T) {
			srv, rec := fakeProvider(t, http.StatusOK, `{}`)
			if !newAdapter(p.kind, srv.URL).TestConnection(context.Background(), "good-key") {
				t.Errorf("TestConnection() = false, want true")
			}
			if rec.method.Load() != p.method || rec.path.Load() != p.path {
				t.Errorf("probe = %v %v, want %v %v", rec.method.Load(), rec.path.Load(), p.method, p.path)
			}
		})

		t.Run(string(p.kind)+" rejected", func(t *testing.T) {
			srv, _ := fakeProvider(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)
			if newAdapter(p.kind, srv.URL).TestConnection(context.Background(), "bad-key") {
				t.Errorf("TestConnection() = true, want false")
			}
		})

		t.Run(string(p.kind)+" unreachable", func(t *testing.T) {
			srv, _ := fakeProvider(t, http.StatusOK, `{}`)
			url := srv.URL
			srv.Close()
			if newAdapter(p.kind, url).TestConnection(context.Background(), "k") {
				t.Errorf("TestConnection() = true, want false")
			}
		})
	}
}

func TestAnthropicProbeBody(t *testing.T) {
	srv, rec := fakeProvider(t, http.StatusOK, `{}`)
	newAdapter(KindAnthropic, srv.URL).TestConnection(context.Background(), "k")

	body := rec.rawBody()
	if got := gjson.GetBytes(body, "model").String(); got != anthropicProbeModel {
		t.Errorf("model = %q", got)
	}
	if got := gjson.GetBytes(body, "max_tokens").Int(); got != 10 {
		t.Errorf("max_tokens = %d", got)
	}
	if got := gjson.GetBytes(body, "messages.0.content").String(); got != "Hello" {
		t.Errorf("content = %q", got)
	}
}

// **Feature: provider-dispatch, Property 2: Response echoes the request**
//
// *For any* successful translation the response SHALL carry the full model id,
// the original text and both language codes exactly as supplied.
func TestProperty2_ResponseEchoesRequest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	servers := map[Kind]*httptest.Server{}
	for _, kind := range Kinds() {
		srv, _ := fakeProvider(t, http.StatusOK, successBody(kind, "译文"))
		servers[kind] = srv
	}

	properties.Property("model id and request fields are echoed", prop.ForAll(
		func(kind Kind, model, text, from, to string) bool {
			modelID := string(kind) + "/" + model
			resp, err := newAdapter(kind, servers[kind].URL).Translate(context.Background(), TranslationRequest{
				Text: text, SourceLanguage: from, TargetLanguage: to, ModelID: modelID, APIKey: "k",
			})
			if err != nil {
				return false
			}
			return resp.ModelID == modelID &&
				resp.OriginalText == text &&
				resp.SourceLanguage == from &&
				resp.TargetLanguage == to &&
				resp.TranslatedText == "译文"
		},
		gen.OneConstOf(KindOpenAI, KindAnthropic, KindOpenRouter),
		gen.Identifier(),
		gen.AnyString(),
		gen.OneConstOf("en", "zh", "ja", "de"),
		gen.OneConstOf("en", "zh", "ja", "de"),
	))

	properties.TestingRun(t)
}

// **Feature: provider-dispatch, Property 3: Auth failures**
//
// *For any* provider and any error body, a 401 or 403 answer SHALL surface
// as INVALID_API_KEY and a 429 answer SHALL surface as RATE_LIMIT.
func TestProperty3_StatusErrors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	var status atomic.Int32
	var message atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := json.Marshal(map[string]any{"error": map[string]any{"message": message.Load()}})
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	properties.Property("status decides the kind", prop.ForAll(
		func(kind Kind, code int, msg string) bool {
			status.Store(int32(code))
			message.Store(msg)
			_, err := newAdapter(kind, srv.URL).Translate(context.Background(), TranslationRequest{
				Text: "x", ModelID: string(kind) + "/m", APIKey: "k",
			})
			var te *TranslationError
			if !errors.As(err, &te) {
				return false
			}
			if code == http.StatusTooManyRequests {
				return te.Kind == ErrorRateLimit
			}
			return te.Kind == ErrorInvalidAPIKey
		},
		gen.OneConstOf(KindOpenAI, KindAnthropic, KindOpenRouter),
		gen.OneConstOf(http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
