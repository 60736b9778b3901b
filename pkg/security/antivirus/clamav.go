package antivirus

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
)

// ClamAVScanner streams files to a clamd daemon
type ClamAVScanner struct {
	client  *clamd.Clamd
	timeout time.Duration // Scan timeout
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner
// address: "localhost:3310", "tcp://host:3310" or a Unix socket path
// timeout: Recommended 30-60 seconds for large files
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{
		client:  clamd.NewClamd(normalizeAddress(address)),
		timeout: timeout,
	}
}

// normalizeAddress turns a bare host:port into the tcp:// form go-clamd expects;
// anything else is passed through as a socket path or URL.
func normalizeAddress(address string) string {
	if strings.Contains(address, "://") || strings.HasPrefix(address, "/") {
		return address
	}
	return "tcp://" + address
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

// Available checks if ClamAV daemon is reachable
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	done := make(chan error, 1)
	go func() { done <- c.client.Ping() }()

	select {
	case err := <-done:
		return err == nil
	case <-ctx.Done():
		return false
	case <-time.After(5 * time.Second):
		return false
	}
}

// Scan checks file for malware using the INSTREAM command
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	abort := make(chan bool, 1)
	responses, err := c.client.ScanStream(data, abort)
	if err != nil {
		result.Infected = true // Fail closed
		result.Error = fmt.Errorf("failed to stream %s to clamd: %w", filename, err)
		return result
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case r, ok := <-responses:
			if !ok {
				return result
			}
			switch r.Status {
			case clamd.RES_FOUND:
				result.Infected = true
				result.ThreatName = r.Description
			case clamd.RES_OK:
			default:
				result.Infected = true
				result.Error = fmt.Errorf("scan error: %s", strings.TrimSpace(r.Raw))
			}
		case <-ctx.Done():
			abort <- true
			result.Infected = true
			result.Error = ctx.Err()
			return result
		case <-timer.C:
			abort <- true
			result.Infected = true
			result.Error = fmt.Errorf("scan of %s timed out after %s", filename, c.timeout)
			return result
		}
	}
}
