// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns gateway failures into guidance for the terminal.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/logging"
)

// Category groups failures by what the user can do about them.
type Category string

const (
	Timeout Category = "timeout"
	DNS     Category = "dns"
	Refused Category = "refused"
	TLS     Category = "tls"
	Network Category = "network"
	Server  Category = "server"
	Client  Category = "client"
	Unknown Category = "unknown"
)

// Classify inspects err, which is typically returned by a gateway.Client.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	var ne *gateway.NetworkError
	if errors.As(err, &ne) {
		cause := ne.Err
		switch {
		case isTimeoutError(cause):
			return Timeout
		case isDNSError(cause):
			return DNS
		case isConnectionRefusedError(cause):
			return Refused
		case isSSLError(cause):
			return TLS
		default:
			return Network
		}
	}

	switch code := gateway.StatusCode(err); {
	case code >= 500:
		return Server
	case code >= 400:
		return Client
	}
	return Unknown
}

// Present prints guidance for err while doing action against baseURL and
// returns err wrapped with the action.
func Present(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(baseURL)

	switch Classify(err) {
	case Timeout:
		showTimeoutError(action)
	case DNS:
		showNetworkHeader(action)
		showDNSError(host)
	case Refused:
		showNetworkHeader(action)
		showConnectionRefusedError(host)
	case TLS:
		showNetworkHeader(action)
		showSSLError()
	case Network:
		showNetworkHeader(action)
	case Server:
		showServerError(action, err)
	case Client:
		showClientError(action, err)
	default:
		pterm.Error.Printf("Failed while %s: %s\n", action, logging.Mask(err.Error()))
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

// showNetworkHeader prints the fixed connectivity message.
func showNetworkHeader(action string) {
	pterm.Error.Printf("%s (while %s)\n", gateway.NetworkErrorMessage, action)
	pterm.Println()
}

func showTimeoutError(action string) {
	pterm.Printf("⏱️  Timed out while %s\n", action)
	pterm.Println()
	pterm.Println("The API took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • The CMS server is under heavy load")
	pterm.Println()
	pterm.Println("Please try again in a few moments.")
	pterm.Println()
}

func showDNSError(host string) {
	pterm.Printf("🌐 Unable to look up %s. Please check:\n", host)
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • INKWELL_API_URL points at the right host")
	pterm.Println()
}

func showConnectionRefusedError(host string) {
	pterm.Printf("🚫 %s is not accepting connections. This could mean:\n", host)
	pterm.Println("  • The CMS server is not running (the default is http://localhost:3001)")
	pterm.Println("  • Wrong server address or port in INKWELL_API_URL")
	pterm.Println()
}

func showSSLError() {
	pterm.Println("🔒 Cannot establish a secure HTTPS connection. Try:")
	pterm.Println("  • Check your system date and time")
	pterm.Println("  • Verify network proxy settings")
	pterm.Println()
}

func showServerError(action string, err error) {
	pterm.Printf("⚠️  Server error while %s\n", action)
	pterm.Println()
	if msg := serverMessage(err); msg != "" {
		pterm.Println("  " + msg)
		pterm.Println()
	}
	pterm.Println("The API reported an internal problem. Please try again in a few minutes.")
	pterm.Println()
}

func showClientError(action string, err error) {
	msg := serverMessage(err)
	if msg == "" {
		msg = logging.Mask(err.Error())
	}
	pterm.Error.Printf("Request rejected while %s: %s\n", action, msg)
}

func serverMessage(err error) string {
	var se *gateway.ServerError
	if errors.As(err, &se) {
		return logging.Mask(se.Message())
	}
	return ""
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the server"
	}
	return u.Host
}
