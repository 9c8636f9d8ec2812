package ai

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"
)

func TestOpenAIModerator(t *testing.T) {
	t.Run("safe", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, []byte(`{"results":[{"flagged":false,"categories":{"hate":false}}]}`))
		defer srv.Close()

		res, err := newOpenAIModerator("k", srv.URL).CheckSafety(context.Background(), "make it blue")
		if err != nil {
			t.Fatalf("CheckSafety: %v", err)
		}
		if !res.Safe {
			t.Error("expected safe result")
		}
	})

	t.Run("flagged", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, []byte(`{"results":[{"flagged":true,"categories":{"hate/threatening":true,"self_harm":true,"violence":false}}]}`))
		defer srv.Close()

		res, err := newOpenAIModerator("k", srv.URL).CheckSafety(context.Background(), "bad")
		if err != nil {
			t.Fatalf("CheckSafety: %v", err)
		}
		want := []string{"hate (threatening)", "self harm"}
		if res.Safe || !slices.Equal(res.Categories, want) {
			t.Errorf("result: got %+v, want categories %v", res, want)
		}
	})
}

func TestMistralModerator(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"results":[{"categories":{"pii":true,"sexual":false}}]}`))
	defer srv.Close()

	res, err := newMistralModerator("k", srv.URL).CheckSafety(context.Background(), "text")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if res.Safe || !slices.Equal(res.Categories, []string{"pii"}) {
		t.Errorf("result: got %+v", res)
	}
}

func TestFallbackModerator(t *testing.T) {
	denied := newTestServer(t, http.StatusForbidden, []byte(`{"error":"project key"}`))
	defer denied.Close()
	ok := newTestServer(t, http.StatusOK, []byte(`{"results":[{"categories":{}}]}`))
	defer ok.Close()

	m := newFallbackModerator(newOpenAIModerator("k", denied.URL), newMistralModerator("k", ok.URL))
	res, err := m.CheckSafety(context.Background(), "text")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if !res.Safe {
		t.Error("expected the secondary moderator's safe result")
	}

	// Non-auth failures are returned as is.
	broken := newTestServer(t, http.StatusInternalServerError, []byte(`oops`))
	defer broken.Close()
	m = newFallbackModerator(newOpenAIModerator("k", broken.URL), newMistralModerator("k", ok.URL))
	if _, err := m.CheckSafety(context.Background(), "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestRegistryCheckPromptWithoutModerator(t *testing.T) {
	reg := NewRegistry("claude", map[string]ProviderConfig{"claude": {APIKey: "k"}})
	res, err := reg.CheckPrompt(context.Background(), "anything")
	if err != nil || !res.Safe {
		t.Errorf("CheckPrompt without moderator: got %+v, %v", res, err)
	}
}
