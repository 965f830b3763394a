package handlers

import (
	"sync"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/gateway"
	"tourbooking/internal/notify"
)

var (
	depsMu      sync.RWMutex
	appEnv      intconfig.Env
	appNotifier notify.Notifier
	appGateway  gateway.Client
)

// Configure stores the shared collaborators used by inline-built services.
// The router calls this once at startup.
func Configure(env intconfig.Env, n notify.Notifier, g gateway.Client) {
	depsMu.Lock()
	defer depsMu.Unlock()
	appEnv = env
	appNotifier = n
	appGateway = g
}

func deps() (intconfig.Env, notify.Notifier, gateway.Client) {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return appEnv, appNotifier, appGateway
}
