package network

import (
	"fmt"
	"time"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
)

// NewNetworkFromConfig creates a network client based on the configuration type.
func NewNetworkFromConfig(cfg config.NetworkConfig, logger check.Logger) (check.Network, error) {
	switch cfg.Type {
	case "mtproto", "":
		timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = config.DefaultConnectTimeoutSeconds * time.Second
		}
		return NewMTProtoNetwork(timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown network type: %s", cfg.Type)
	}
}
