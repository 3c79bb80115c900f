package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"CollabBoard/internal/logging"
)

// ServiceType is the mDNS service hosts advertise.
const ServiceType = "_localboard._tcp"

// Session is a host found on the local network.
type Session struct {
	Name string
	Addr string
}

// Advertise publishes a host session on the local network. Shutdown the
// returned server to stop.
func Advertise(port int, session string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if session == "" {
		session = host
	}

	var ips []net.IP
	if ip := firstIPv4(); ip != nil {
		ips = []net.IP{ip}
	}
	service, err := mdns.NewMDNSService(session, ServiceType, "", "", port, ips, []string{"CollabBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for sessions until timeout or ctx is done.
func Browse(ctx context.Context, timeout time.Duration, found func(Session)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(Session{Name: e.Name, Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port)})
		}
	}()

	errc := make(chan error, 1)
	go func() {
		params := mdns.DefaultParams(ServiceType)
		params.Entries = entries
		params.Timeout = timeout
		params.DisableIPv6 = true
		err := mdns.Query(params)
		close(entries)
		errc <- err
	}()

	select {
	case err := <-errc:
		<-done
		if err != nil {
			return fmt.Errorf("browse %s: %w", ServiceType, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discover returns the first session found, if any.
func Discover(ctx context.Context, timeout time.Duration, logger logging.Logger) (Session, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan Session, 1)
	go func() {
		err := Browse(ctx, timeout, func(s Session) {
			select {
			case result <- s:
				cancel()
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Warnf("discover sessions: %v", err)
		}
		cancel()
	}()

	<-ctx.Done()
	select {
	case s := <-result:
		return s, true
	default:
		return Session{}, false
	}
}
