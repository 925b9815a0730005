package compare

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sketchkit/sketchkit/prom"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"remote_addr": "10.0.0.1", "request": "GET / HTTP/1.1", "status": 200}
{"remote_addr": "10.0.0.2", "status": 404}

not json at all
{"remote_addr": "999.1.1.1"}
{"remote_addr": "", "status": 500}
{"status": 200}
{"remote_addr": "2001:db8::1"}
   {"remote_addr": "10.0.0.1"}   
{"client": {"ip": "172.16.0.9"}, "remote_addr": "10.0.0.3"}
`

func TestLoadIPs(t *testing.T) {
	ips, err := LoadIPs(strings.NewReader(sampleLog), "")
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2", "2001:db8::1", "10.0.0.1", "10.0.0.3"}, ips)
}

func TestLoadIPsSkipsOversizedLine(t *testing.T) {
	tooLong := prom.LogLinesSkipped.WithLabelValues("too_long")
	before := testutil.ToFloat64(tooLong)

	huge := `{"remote_addr": "10.0.0.3", "padding": "` + strings.Repeat("x", 2*maxLineBytes) + `"}`
	log := `{"remote_addr": "10.0.0.1"}` + "\n" + huge + "\n" + `{"remote_addr": "10.0.0.2"}`
	ips, err := LoadIPs(strings.NewReader(log), "")
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, ips)
	require.Equal(t, before+1, testutil.ToFloat64(tooLong))
}

func TestReadLineLimit(t *testing.T) {
	reader := bufio.NewReaderSize(strings.NewReader("short\nway too long\nlast"), 16)
	line, tooLong, err := readLine(reader, 6)
	require.NoError(t, err)
	require.False(t, tooLong)
	require.Equal(t, "short\n", string(line))

	line, tooLong, err = readLine(reader, 6)
	require.NoError(t, err)
	require.True(t, tooLong)
	require.Nil(t, line)

	line, tooLong, err = readLine(reader, 6)
	require.ErrorIs(t, err, io.EOF)
	require.False(t, tooLong)
	require.Equal(t, "last", string(line))
}

func TestLoadIPsNestedField(t *testing.T) {
	ips, err := LoadIPs(strings.NewReader(sampleLog), "client.ip")
	require.NoError(t, err)
	require.Equal(t, []string{"172.16.0.9"}, ips)
}

func TestLoadIPsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o600))
	ips, err := LoadIPsFile(path, DefaultField)
	require.NoError(t, err)
	require.Len(t, ips, 5)

	_, err = LoadIPsFile(filepath.Join(t.TempDir(), "missing.log"), DefaultField)
	require.Error(t, err)
}

func TestIsValidIP(t *testing.T) {
	for _, s := range []string{"127.0.0.1", "::1", "fe80::1%eth0", "2001:db8::ff00:42:8329"} {
		require.True(t, IsValidIP(s), s)
	}
	for _, s := range []string{"", "localhost", "1.2.3", "256.0.0.1", "10.0.0.1:80"} {
		require.False(t, IsValidIP(s), s)
	}
}
