package directory

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Flat key=value text format for the cached and builtin directory files:
//
//	timestamp=1577836800
//	server1=host1:5222
//	server2=host2
//
// Server keys are ordered by their numeric suffix. Unknown keys are
// ignored so a future version may add keys without breaking old readers.
// A missing or malformed timestamp fails the parse.

const (
	timestampKey    = "timestamp"
	serverKeyPrefix = "server"
)

var ErrNoTimestamp = errors.New("directory: missing or malformed timestamp")

// Parse deserializes a directory from its flat text form.
func Parse(data []byte) (*Directory, error) {
	var (
		ts      time.Time
		haveTS  bool
		servers = map[int]string{}
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == timestampKey:
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, ErrNoTimestamp
			}
			ts = time.Unix(secs, 0)
			haveTS = true
		case strings.HasPrefix(key, serverKeyPrefix):
			n, err := strconv.Atoi(key[len(serverKeyPrefix):])
			if err != nil {
				continue // unknown key, ignore
			}
			servers[n] = value
		}
		// anything else: unknown key, ignore
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("directory: read: %w", err)
	}
	if !haveTS {
		return nil, ErrNoTimestamp
	}

	order := make([]int, 0, len(servers))
	for n := range servers {
		order = append(order, n)
	}
	sort.Ints(order)

	endpoints := make([]Endpoint, 0, len(order))
	for _, n := range order {
		ep, err := ParseEndpoint(servers[n])
		if err != nil {
			return nil, fmt.Errorf("directory: %s%d: %w", serverKeyPrefix, n, err)
		}
		endpoints = append(endpoints, ep)
	}

	return New(ts, endpoints), nil
}

// Serialize is the inverse of Parse: Parse(d.Serialize()) yields a
// directory equal to d (endpoints, order, second-precision timestamp).
func (d *Directory) Serialize() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s=%d\n", timestampKey, d.timestamp.Unix())
	for i, ep := range d.endpoints {
		fmt.Fprintf(&buf, "%s%d=%s\n", serverKeyPrefix, i+1, ep.String())
	}
	return buf.Bytes()
}
