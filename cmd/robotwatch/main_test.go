package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

const botUA = "ExampleBot/1.0"

func writeDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robots.json")
	doc := fmt.Sprintf(`{
		"robots": [{"id": 1, "name": "ExampleBot", "url": "example-bot", "reputation": "ok",
		            "ips": [["203.0.113.5"], ["bogus"]], "uas": [%q]}],
		"patterns": [{"pattern": "bot", "priority": 1}]
	}`, robots.HashUserAgent(botUA))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func setenv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(envPrefix+k, v)
	}
}

func TestRun_Check(t *testing.T) {
	setenv(t, map[string]string{"DATABASE": writeDatabase(t), "LOG_LEVEL": "error"})

	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"check"}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "robots: 1\n")
	assert.Contains(t, out.String(), "ips: 1\n")
	assert.Contains(t, out.String(), "dropped: 1\n")
}

func TestRun_CheckMissingDatabase(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(),
		[]string{"-db", filepath.Join(t.TempDir(), "missing.json"), "check"}, nil, &out, &errOut)
	require.Error(t, err)
	assert.ErrorIs(t, err, robots.ErrDatabaseLoad)
}

func TestRun_Filter(t *testing.T) {
	setenv(t, map[string]string{
		"DATABASE":                    writeDatabase(t),
		"FILTER_IP_SOURCE":            "ip",
		"FILTER_USER_AGENT_SOURCE":    "ua",
		"FILTER_ROBOT_DESTINATION":    "robot",
		"FILTER_IDENTITY_DESTINATION": "identity",
	})

	in := strings.NewReader(`{"ip":"203.0.113.5","ua":"ExampleBot/1.0"}` + "\n" +
		`not json` + "\n" +
		`{"ip":"192.0.2.1","ua":"Mozilla/5.0"}` + "\n")
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"filter"}, in, &out, &errOut))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]any{"type": "robot"}, first["identity"])
	robot, ok := first["robot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ExampleBot", robot["name"])

	assert.Equal(t, "not json", lines[1])

	var third map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.NotContains(t, third, "robot")
	assert.NotContains(t, third, "identity")
}

func TestRun_FilterRemoteZeroCacheSize(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/1.1/identity", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"robot","robot":{"id":1,"name":"ExampleBot"}}`))
	}))
	t.Cleanup(srv.Close)

	setenv(t, map[string]string{
		"CACHE":                       "memory",
		"CACHE_SIZE":                  "0",
		"REMOTE_BASE_URL":             srv.URL,
		"REMOTE_API_KEY":              "secret",
		"FILTER_IP_SOURCE":            "ip",
		"FILTER_USER_AGENT_SOURCE":    "ua",
		"FILTER_IDENTITY_DESTINATION": "identity",
	})

	event := `{"ip":"203.0.113.5","ua":"ExampleBot/1.0"}` + "\n"
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-source", "remote", "filter"},
		strings.NewReader(event+event), &out, &errOut))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.JSONEq(t, `{"ip":"203.0.113.5","ua":"ExampleBot/1.0","identity":{"type":"robot"}}`, line)
	}
	assert.Equal(t, int32(2), calls.Load(), "every event reaches the API without a cache")
}

func TestRun_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"explode"}, nil, &out, &errOut)
	assert.ErrorIs(t, err, errUnknownCommand)
	assert.Contains(t, errOut.String(), "usage: robotwatch")

	err = run(context.Background(), []string{"-source", "carrier-pigeon", "filter"}, nil, &out, &errOut)
	assert.ErrorIs(t, err, errUnknownSource)

	setenv(t, map[string]string{"CACHE": "disk", "REMOTE_BASE_URL": "http://127.0.0.1:1"})
	err = run(context.Background(), []string{"-source", "remote", "filter"}, nil, &out, &errOut)
	assert.ErrorIs(t, err, errUnknownCache)
}

func TestRun_Serve(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	setenv(t, map[string]string{"DATABASE": writeDatabase(t), "HTTP_ADDR": addr, "LOG_LEVEL": "error"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out, errOut bytes.Buffer
		done <- run(ctx, []string{"serve"}, nil, &out, &errOut)
	}()

	url := "http://" + addr + "/1.1/address/203.0.113.5"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
