package registry

import (
	"errors"
	"time"
)

var (
	ErrInstanceIDIsEmpty = errors.New("registry: instance id is empty")
	ErrFunctionIDIsEmpty = errors.New("registry: function id is empty")
	ErrNotAnnounced      = errors.New("registry: instance not announced")
	ErrNoEndpoints       = errors.New("registry: at least one etcd endpoint is required")
)

// Instance describes a running function instance and where it can be invoked.
type Instance struct {
	FunctionID string    `json:"functionId"`
	InstanceID string    `json:"instanceId"`
	Handler    string    `json:"handler"`
	Address    string    `json:"address"`
	StartedAt  time.Time `json:"startedAt"`
}

func (i Instance) validate() error {
	if i.FunctionID == "" {
		return ErrFunctionIDIsEmpty
	}
	if i.InstanceID == "" {
		return ErrInstanceIDIsEmpty
	}
	return nil
}

// Options configures the etcd announcer.
type Options struct {
	// Prefix controls where instances are stored. Defaults to DefaultPrefix when empty.
	Prefix string
	// DialTimeout overrides the etcd dial timeout. Zero uses DefaultDialTimeout.
	DialTimeout time.Duration
	// TTL is the lease lifetime. Zero uses DefaultTTL.
	TTL time.Duration
}

const (
	DefaultPrefix      = "hyperfaas/instances"
	DefaultDialTimeout = 5 * time.Second
	DefaultTTL         = 10 * time.Second
)
