package web

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestDisplayRunServesPreview(t *testing.T) {
	d := NewDisplay(ServerConfig{ListenAddr: "127.0.0.1:0"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for d.ListenAddr() == "" {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("preview never started listening")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + d.ListenAddr() + "/api/v1/surfaces")
	if err != nil {
		cancel()
		t.Fatalf("GET surfaces: %v", err)
	}
	var list []surfaceInfo
	err = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusOK || len(list) != 0 {
		t.Errorf("surfaces: status=%d err=%v list=%v", resp.StatusCode, err, list)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHTTPServerStopIsFinal(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", http.NotFoundHandler(), nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.ListenAddr() == "" {
		t.Error("ListenAddr empty after Start")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start after Stop succeeded")
	}
}
