package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"CollabBoard/internal/logging"
)

// LinkScheme prefixes share links.
const LinkScheme = "localboard"

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP(logger logging.Logger) string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline networks: fall back to the interfaces.
		return localIPFallback(logger)
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func localIPFallback(logger logging.Logger) string {
	if ip := firstIPv4(); ip != nil {
		return ip.String()
	}
	logger.Warn("no suitable local IP found, share links will use loopback")
	return "127.0.0.1"
}

// firstIPv4 returns the first address of an up, non loopback interface.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return nil
}

// ShareLink returns the link other participants open to join a host.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s://%s", LinkScheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// ParseLink returns the host:port of a share link. Plain host:port
// addresses are accepted too.
func ParseLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err == nil && u.Scheme == LinkScheme && u.Host != "" {
		link = u.Host
	}
	host, port, err := net.SplitHostPort(link)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", link, err)
	}
	if _, err := strconv.Atoi(port); err != nil || host == "" {
		return "", fmt.Errorf("invalid link %q", link)
	}
	return net.JoinHostPort(host, port), nil
}

// WebsocketURL builds the address a Client dials.
func WebsocketURL(addr, path string) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: path}
	return u.String()
}
