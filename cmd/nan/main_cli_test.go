package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nan "github.com/dep2p/go-nan"
	"github.com/dep2p/go-nan/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCmd_PrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, config.DefaultServiceName, cfg.Service.Name)
	assert.Equal(t, config.DefaultGreeting, cfg.Discovery.Greeting)
}

func TestConfigCmd_LogFlags(t *testing.T) {
	out, err := execute(t, "config", "--log-level", "debug", "--log-format", "json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestConfigCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "config", "--config", t.TempDir()+"/missing.json")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, nan.Version)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, nan.Version, v["version"])
}

func TestDemoCmd_JSON(t *testing.T) {
	out, err := execute(t, "demo", "--nodes", "3", "--message", "ping", "--json")
	require.NoError(t, err)

	var report demoReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "publisher", report.Publisher)
	assert.Len(t, report.Subscribers, 2)
	assert.Equal(t, 2, report.Greeted)
	assert.Equal(t, 2, report.Attempted)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Received, 2)
	for _, rc := range report.Received {
		assert.Equal(t, "ping", rc.Payload)
	}
}

func TestDemoCmd_Text(t *testing.T) {
	out, err := execute(t, "demo", "--nodes", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "publisher: publisher")
	assert.Contains(t, out, "attempted=1 failed=0")
	assert.Contains(t, out, `"hi"`)
}

func TestDemoCmd_RejectsSingleNode(t *testing.T) {
	_, err := execute(t, "demo", "--nodes", "1")
	assert.Error(t, err)
}
