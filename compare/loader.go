/*
Package compare benchmarks exact distinct counting against HyperLogLog on the
client addresses of a JSON-lines access log.
*/
package compare

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/sketchkit/sketchkit/prom"
	"github.com/tidwall/gjson"
)

// DefaultField is the log record field holding the client address
const DefaultField = "remote_addr"

// lines longer than this are skipped
const maxLineBytes = 1024 * 1024

// LoadIPs reads one JSON object per line from _r_ and returns the valid IP
// addresses found at _field_ (a gjson path), in log order. Blank lines, lines
// that aren't JSON, lines over 1 MiB and values that aren't IP addresses are
// skipped.
func LoadIPs(r io.Reader, field string) ([]string, error) {
	if field == "" {
		field = DefaultField
	}
	ips := []string{}
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, tooLong, err := readLine(reader, maxLineBytes)
		if tooLong {
			prom.LogLinesSkipped.WithLabelValues("too_long").Inc()
		} else if ip, ok := parseLine(line, field); ok {
			ips = append(ips, ip)
		}
		if err == io.EOF {
			return ips, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sketchkit: reading log: %w", err)
		}
	}
}

// readLine returns the next line of _reader_ including its terminator. A line
// over _limit_ bytes is consumed in full but not returned, tooLong is set instead.
func readLine(reader *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		var chunk []byte
		chunk, err = reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err != bufio.ErrBufferFull {
			return line, tooLong, err
		}
	}
}

func parseLine(line []byte, field string) (string, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", false
	}
	if !gjson.ValidBytes(line) {
		prom.LogLinesSkipped.WithLabelValues("json").Inc()
		return "", false
	}
	ip := gjson.GetBytes(line, field).String()
	if !IsValidIP(ip) {
		prom.LogLinesSkipped.WithLabelValues("address").Inc()
		return "", false
	}
	return ip, true
}

// LoadIPsFile is LoadIPs on the file at _path_
func LoadIPsFile(path, field string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sketchkit: opening log: %w", err)
	}
	defer f.Close()
	return LoadIPs(f, field)
}

// IsValidIP reports whether _s_ is an IPv4 or IPv6 address
func IsValidIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}
