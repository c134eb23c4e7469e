// Package registry announces running function instances so the platform can find them.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/utils"
)

type Announcer interface {
	Announce(ctx context.Context, inst Instance) error
	Withdraw(ctx context.Context) error
	Close() error
}

// EtcdAnnouncer keeps one instance key alive in etcd under a lease.
type EtcdAnnouncer struct {
	cli    *clientv3.Client
	prefix string
	ttl    int64
	logger *slog.Logger

	mu     sync.Mutex
	lease  clientv3.LeaseID
	key    string
	stopKA context.CancelFunc
}

// NewEtcdAnnouncer connects to etcd using the provided endpoints and options.
func NewEtcdAnnouncer(endpoints []string, opts Options, logger *slog.Logger) (*EtcdAnnouncer, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = utils.DiscardLogger()
	}

	return &EtcdAnnouncer{
		cli:    cli,
		prefix: normalizePrefix(opts.Prefix),
		ttl:    int64(ttl.Seconds()),
		logger: logger,
	}, nil
}

// Announce writes inst under a fresh lease and keeps the lease alive until Withdraw.
// Announcing again replaces the previous announcement.
func (a *EtcdAnnouncer) Announce(ctx context.Context, inst Instance) error {
	if err := inst.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(inst)
	if err != nil {
		return err
	}

	if err := a.Withdraw(ctx); err != nil && !errors.Is(err, ErrNotAnnounced) {
		return err
	}

	grant, err := a.cli.Grant(ctx, a.ttl)
	if err != nil {
		return err
	}

	key := Key(a.prefix, inst)
	if _, err := a.cli.Put(ctx, key, string(payload), clientv3.WithLease(grant.ID)); err != nil {
		return err
	}

	// The keepalive must outlive the announce call's context.
	kaCtx, stop := context.WithCancel(context.Background())
	ch, err := a.cli.KeepAlive(kaCtx, grant.ID)
	if err != nil {
		stop()
		return err
	}
	go func() {
		for range ch {
		}
		a.logger.Debug("Lease keepalive ended", "key", key)
	}()

	a.mu.Lock()
	a.lease, a.key, a.stopKA = grant.ID, key, stop
	a.mu.Unlock()

	a.logger.Info("Announced instance", "key", key, "address", inst.Address)
	return nil
}

// Withdraw revokes the lease, which removes the instance key.
func (a *EtcdAnnouncer) Withdraw(ctx context.Context) error {
	a.mu.Lock()
	lease, key, stop := a.lease, a.key, a.stopKA
	a.lease, a.key, a.stopKA = 0, "", nil
	a.mu.Unlock()

	if stop == nil {
		return ErrNotAnnounced
	}
	stop()

	if _, err := a.cli.Revoke(ctx, lease); err != nil {
		return err
	}
	a.logger.Info("Withdrew instance", "key", key)
	return nil
}

// Close releases the etcd client.
func (a *EtcdAnnouncer) Close() error {
	if a == nil || a.cli == nil {
		return nil
	}
	return a.cli.Close()
}

// Key is where inst is stored below prefix.
func Key(prefix string, inst Instance) string {
	return normalizePrefix(prefix) + "/" + inst.FunctionID + "/" + inst.InstanceID
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}
