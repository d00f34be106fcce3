// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package ctlsock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trafilytics/trafilytics/lib/codec"
)

// startServer runs s until the test ends and waits for the socket
// file to appear before returning.
func startServer(t *testing.T, server *Server, socketPath string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() = %v", err)
		}
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info, err := os.Stat(socketPath); err == nil && info.Mode()&os.ModeSocket != 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("socket file never appeared")
}

func TestCallRoundTrip(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	server := NewServer(socketPath, slog.Default())

	type statusReply struct {
		Scans   int    `cbor:"scans"`
		Station string `cbor:"station"`
	}
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return statusReply{Scans: 17, Station: "lobby"}, nil
	})
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	var reply statusReply
	if err := client.Call(context.Background(), "status", nil, &reply); err != nil {
		t.Fatalf("Call(status) = %v", err)
	}
	if reply.Scans != 17 || reply.Station != "lobby" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestCallPassesRequestFields(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	server := NewServer(socketPath, slog.Default())

	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Label string `cbor:"label"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		if request.Label == "" {
			return nil, fmt.Errorf("missing required field: label")
		}
		return map[string]string{"label": request.Label}, nil
	})
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	var reply map[string]string
	if err := client.Call(context.Background(), "echo", map[string]any{"label": "west-door"}, &reply); err != nil {
		t.Fatalf("Call(echo) = %v", err)
	}
	if reply["label"] != "west-door" {
		t.Errorf("reply = %v", reply)
	}

	var callErr *CallError
	err := client.Call(context.Background(), "echo", nil, nil)
	if !errors.As(err, &callErr) {
		t.Fatalf("Call(echo) without label = %v, want *CallError", err)
	}
}

func TestUnknownActionReturnsCallError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	server := NewServer(socketPath, slog.Default())
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	var callErr *CallError
	err := client.Call(context.Background(), "restart", nil, nil)
	if !errors.As(err, &callErr) {
		t.Fatalf("Call(restart) = %v, want *CallError", err)
	}
	if callErr.Action != "restart" {
		t.Errorf("CallError.Action = %q", callErr.Action)
	}
}

func TestStaleSocketFileIsReplaced(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	if err := os.WriteFile(socketPath, []byte("stale"), 0600); err != nil {
		t.Fatal(err)
	}

	server := NewServer(socketPath, slog.Default())
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server, socketPath)

	if err := NewClient(socketPath).Call(context.Background(), "status", nil, nil); err != nil {
		t.Fatalf("Call after stale socket replacement = %v", err)
	}
}
