package llm

import (
	"fmt"
	"sync"
)

// KeyStore resolves API keys with the priority: session-specific key, then
// the system key. It is injected into the client factory instead of living
// as ambient global state.
type KeyStore struct {
	mu          sync.RWMutex
	systemKey   string
	sessionKeys map[string]string
	logger      func(string)
}

// NewKeyStore creates a key store seeded with the system-level key (may be
// empty when every session brings its own).
func NewKeyStore(systemKey string, logFunc func(string)) *KeyStore {
	return &KeyStore{
		systemKey:   systemKey,
		sessionKeys: make(map[string]string),
		logger:      logFunc,
	}
}

func (k *KeyStore) log(msg string) {
	if k.logger != nil {
		k.logger(msg)
	}
}

// SetSessionKey stores an API key for a session.
func (k *KeyStore) SetSessionKey(sessionID, apiKey string) {
	k.mu.Lock()
	k.sessionKeys[sessionID] = apiKey
	k.mu.Unlock()
	k.log(fmt.Sprintf("[KEYS] API key set for session: %s", sessionID))
}

// RemoveSessionKey forgets the API key for a session.
func (k *KeyStore) RemoveSessionKey(sessionID string) {
	k.mu.Lock()
	delete(k.sessionKeys, sessionID)
	k.mu.Unlock()
	k.log(fmt.Sprintf("[KEYS] API key removed for session: %s", sessionID))
}

// ResolveKey implements KeyResolver.
func (k *KeyStore) ResolveKey(sessionID string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if sessionID != "" {
		if key, ok := k.sessionKeys[sessionID]; ok {
			return key, nil
		}
	}
	if k.systemKey != "" {
		return k.systemKey, nil
	}
	return "", fmt.Errorf("no API key available for session %q. Please set your API key in settings", sessionID)
}
