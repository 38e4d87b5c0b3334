// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T, reply string, seen *map[string]any, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		*auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, seen))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Generate(t *testing.T) {
	var seen map[string]any
	var auth string
	srv := fakeOpenAI(t, `{"summary":"ok"}`, &seen, &auth)

	c := NewOpenAIClient(Config{
		Model:        "gpt-test",
		BaseURL:      srv.URL + "/v1",
		SystemPrompt: "sys",
		Logger:       testLogger(),
	}, SealBytes([]byte("sk-testkey")))

	temp := float32(0.2)
	out, err := c.Generate(context.Background(), "describe f", GenerationParams{Temperature: &temp})
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, "Bearer sk-testkey", auth)
	assert.Equal(t, "gpt-test", seen["model"])
	assert.InDelta(t, 0.2, seen["temperature"], 0.001)
	msgs := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "sys", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "describe f", msgs[1].(map[string]any)["content"])
	assert.Equal(t, "gpt-test", c.Model())
}

func TestOpenAIClient_EmptyChoice(t *testing.T) {
	var seen map[string]any
	var auth string
	srv := fakeOpenAI(t, "", &seen, &auth)

	c := NewOpenAIClient(Config{BaseURL: srv.URL + "/v1", Logger: testLogger()}, SealBytes([]byte("k")))
	_, err := c.Generate(context.Background(), "p", GenerationParams{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func TestOpenAIClient_ErrorIsRedacted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key sk-abcdefghijklmnopqrstuvwxyz012345","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL + "/v1", Logger: testLogger()}, SealBytes([]byte("k")))
	_, err := c.Generate(context.Background(), "p", GenerationParams{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "abcdefghijklmnop")
}

func TestNew(t *testing.T) {
	t.Setenv("DOCNSRT_TEST_KEY", "sk-xyz")

	c, err := New(Config{Provider: "OpenAI", APIKeyEnv: "DOCNSRT_TEST_KEY", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(Config{Provider: "openai", APIKeyEnv: "DOCNSRT_TEST_UNSET"})
	assert.ErrorIs(t, err, ErrSecretNotFound)

	c, err = New(Config{Provider: "ollama", BaseURL: "http://127.0.0.1:11434"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaModel, c.Model())

	_, err = New(Config{Provider: "bard"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestSealedKey_Use(t *testing.T) {
	raw := []byte("secret-value")
	k := SealBytes(raw)
	assert.NotEqual(t, "secret-value", string(raw), "source bytes are wiped")

	var got string
	require.NoError(t, k.Use(func(b []byte) error {
		got = string(b)
		return nil
	}))
	assert.Equal(t, "secret-value", got)
}
