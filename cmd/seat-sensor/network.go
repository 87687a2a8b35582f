package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sweeney/seat-sensor/internal/status"
)

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// readNetworkInfo reads network state from the pi-helper env file, falling
// back to the process environment when the file is missing or unreadable.
// It returns nil when NETWORK_STATUS is unset.
func readNetworkInfo(path string) *status.NetworkInfo {
	lookup := os.Getenv
	if path != "" {
		if vars, err := godotenv.Read(path); err == nil {
			lookup = func(key string) string {
				if v, ok := vars[key]; ok {
					return v
				}
				return os.Getenv(key)
			}
		}
	}

	s := lookup(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       lookup(envNetworkType),
		IP:         lookup(envNetworkIP),
		Status:     s,
		Gateway:    lookup(envNetworkGateway),
		WifiStatus: lookup(envNetworkWifiStatus),
		SSID:       lookup(envNetworkWifiSSID),
	}
}
