package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthClient resolves a session token to a stable owner identity. All
// catalog and checkout operations are undefined without one.
type AuthClient interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

type authUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authHTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

func NewAuthHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) AuthClient {
	return &authHTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *authHTTPClient) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("session token is empty")
	}

	url := fmt.Sprintf("%s/auth/v1/user", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Errorf("AuthClient: Failed to create user request: %v", err)
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("AuthClient: Failed to execute user request: %v", err)
		return "", fmt.Errorf("failed to communicate with auth provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.log.Warnf("AuthClient: Session token rejected with status %d", resp.StatusCode)
		return "", fmt.Errorf("invalid or expired session token")
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Errorf("AuthClient: User request failed with status %d", resp.StatusCode)
		return "", fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var user authUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		c.log.Errorf("AuthClient: Failed to decode user response: %v", err)
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	if _, err := uuid.Parse(user.ID); err != nil {
		c.log.Errorf("AuthClient: Auth provider returned malformed user ID '%s': %v", user.ID, err)
		return "", fmt.Errorf("auth provider returned malformed user ID")
	}

	c.log.Debugf("AuthClient: Resolved session to owner %s", user.ID)
	return user.ID, nil
}
