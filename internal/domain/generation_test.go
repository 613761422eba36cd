package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestGenerationRequestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		count     *int
		wantCount int
		wantErr   error
	}{
		{name: "omitted", count: nil, wantCount: DefaultItemCount},
		{name: "zero", count: intPtr(0), wantCount: 0},
		{name: "explicit", count: intPtr(3), wantCount: 3},
		{name: "clamped", count: intPtr(50), wantCount: MaxItemCount},
		{name: "negative", count: intPtr(-1), wantErr: ErrInvalidItemCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := GenerationRequest{Topic: "  Animals ", ItemCount: tc.count}
			err := req.Normalize()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Normalize error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if req.Topic != "Animals" {
				t.Fatalf("Topic = %q, want %q", req.Topic, "Animals")
			}
			if req.Count() != tc.wantCount {
				t.Fatalf("Count() = %d, want %d", req.Count(), tc.wantCount)
			}
		})
	}
}

func TestGenerationRequestNormalizeRequiresTopic(t *testing.T) {
	req := GenerationRequest{Topic: "   "}
	if err := req.Normalize(); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("Normalize error = %v, want ErrTopicRequired", err)
	}
	if ErrTopicRequired.Error() != "Topic is required" {
		t.Fatalf("unexpected message %q", ErrTopicRequired.Error())
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":      "en",
		"es":    "es",
		"pt-br": "pt-BR",
		"!!":    "en",
	}
	for in, want := range cases {
		if got := NormalizeLanguage(in); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImageURLsKeepsAlignment(t *testing.T) {
	results := []ImageResult{
		{URL: "https://cdn/a.png"},
		{Err: ErrMissingAsset},
		{URL: "https://cdn/c.png"},
		{URL: "https://cdn/ignored.png", Err: errors.New("upload failed")},
	}
	urls := ImageURLs(results)
	want := []string{"https://cdn/a.png", "", "https://cdn/c.png", ""}
	if len(urls) != len(want) {
		t.Fatalf("len = %d, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
	if got := ImageURLs(nil); len(got) != 0 {
		t.Fatalf("expected empty list for nil input, got %v", got)
	}
}

func TestBackendErrorMessage(t *testing.T) {
	if got := (&BackendError{Status: 502}).Error(); got != "API error: 502" {
		t.Fatalf("got %q", got)
	}
	if got := (&BackendError{Status: 400, Message: "Topic is required"}).Error(); got != "Topic is required" {
		t.Fatalf("got %q", got)
	}
	wrapped := &TransportError{Op: "post content", Err: errors.New("connection refused")}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Fatal("TransportError should unwrap to its cause")
	}
}

func TestLessonFormDataValidate(t *testing.T) {
	ok := LessonFormData{Title: "Fruits", Items: []Item{{Name: "Apple"}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	bad := LessonFormData{Title: "Fruits", Items: []Item{{Name: "Apple"}, {Name: " "}}}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidLesson) {
		t.Fatalf("Validate error = %v, want ErrInvalidLesson", err)
	}
	if err.Error() != "items[1].name is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := (LessonFormData{}).Validate(); !errors.Is(err, ErrInvalidLesson) {
		t.Fatalf("expected missing title to be rejected, got %v", err)
	}
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Search: " cat ", Limit: 0, Offset: -4}
	p.Normalize()
	if p.Search != "cat" || p.Limit != DefaultListLimit || p.Offset != 0 {
		t.Fatalf("unexpected params %+v", p)
	}
	p = ListParams{Limit: 1000}
	p.Normalize()
	if p.Limit != MaxListLimit {
		t.Fatalf("Limit = %d, want %d", p.Limit, MaxListLimit)
	}
}
