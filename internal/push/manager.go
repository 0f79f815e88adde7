// Package push implements the push-subscription side channel: device
// registration and credential lifecycle, per-area topic subscriptions, and
// the persistent websocket listener. An outage here degrades only the
// notification channel; the polled state is unaffected.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// testTopics are always subscribed in addition to the per-area topics, so
// upstream test broadcasts reach every device.
var testTopics = []string{"test:general", "test:local"}

// Credentials identify a registered device.
type Credentials struct {
	DeviceID string `json:"deviceId"`
	Token    string `json:"token"`
}

// Manager owns device credentials and topic subscriptions. Credentials are
// persisted to a state file so a restart does not re-register.
type Manager struct {
	registerURL  string
	subscribeURL string
	statePath    string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewManager creates a push-subscription manager.
func NewManager(registerURL, subscribeURL, statePath string, logger *slog.Logger) *Manager {
	return &Manager{
		registerURL:  registerURL,
		subscribeURL: subscribeURL,
		statePath:    statePath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// EnsureSubscribed makes sure the device is registered with valid
// credentials and subscribed to the topics for the configured areas plus
// the fixed test topics. Invalid persisted credentials are deleted,
// forcing a fresh registration on the next call.
func (m *Manager) EnsureSubscribed(ctx context.Context, watchAreas []string) (*Credentials, error) {
	creds, err := m.loadCredentials()
	if err != nil {
		m.logger.Warn("Failed to load persisted push credentials", "error", err)
	}

	if creds != nil {
		if err := m.validate(ctx, creds); err != nil {
			m.logger.Warn("Persisted push credentials rejected, re-registering", "error", err)
			m.deleteCredentials()
			creds = nil
		}
	}

	if creds == nil {
		creds, err = m.register(ctx)
		if err != nil {
			return nil, fmt.Errorf("device registration failed: %w", err)
		}
		if err := m.saveCredentials(creds); err != nil {
			m.logger.Warn("Failed to persist push credentials", "error", err)
		}
	}

	if err := m.subscribe(ctx, creds, Topics(watchAreas)); err != nil {
		return nil, fmt.Errorf("topic subscription failed: %w", err)
	}
	return creds, nil
}

// SubscribeUntilReady calls EnsureSubscribed until it succeeds or ctx is
// canceled, waiting interval between attempts. A push endpoint outage
// therefore delays the notification channel instead of failing startup.
func (m *Manager) SubscribeUntilReady(ctx context.Context, watchAreas []string, interval time.Duration) (*Credentials, error) {
	for {
		creds, err := m.EnsureSubscribed(ctx, watchAreas)
		if err == nil {
			return creds, nil
		}
		m.logger.Warn("Push subscription failed, will retry", "error", err, "retryIn", interval)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Topics derives the topic codes for the configured areas, always
// including the fixed test topics.
func Topics(watchAreas []string) []string {
	topics := make([]string, 0, len(watchAreas)+len(testTopics))
	for _, area := range watchAreas {
		topics = append(topics, "area:"+strings.ReplaceAll(strings.ToLower(area), " ", "-"))
	}
	return append(topics, testTopics...)
}

// register obtains fresh device credentials.
func (m *Manager) register(ctx context.Context) (*Credentials, error) {
	var creds Credentials

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.registerURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create register request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := m.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("register request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("register returned HTTP %d", resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&creds)
		},
		retry.Attempts(3),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Registered push device", "deviceId", creds.DeviceID)
	return &creds, nil
}

// validate checks credentials against the registration endpoint.
func (m *Manager) validate(ctx context.Context, creds *Credentials) error {
	url := fmt.Sprintf("%s/%s", m.registerURL, creds.DeviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("validate request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("validate returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// subscribe replaces the device's topic set.
func (m *Manager) subscribe(ctx context.Context, creds *Credentials, topics []string) error {
	payload, err := json.Marshal(map[string]any{
		"deviceId": creds.DeviceID,
		"topics":   topics,
	})
	if err != nil {
		return fmt.Errorf("failed to encode subscribe payload: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.subscribeURL, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create subscribe request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+creds.Token)

			resp, err := m.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("subscribe request failed: %w", err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("subscribe returned HTTP %d", resp.StatusCode)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func (m *Manager) loadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(m.statePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("malformed credential state: %w", err)
	}
	if creds.DeviceID == "" || creds.Token == "" {
		return nil, fmt.Errorf("incomplete credential state")
	}
	return &creds, nil
}

func (m *Manager) saveCredentials(creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(m.statePath, data, 0o600)
}

func (m *Manager) deleteCredentials() {
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("Failed to delete push credential state", "error", err)
	}
}
