package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/gatherly-app/gatherly/internal/config"
	"github.com/gatherly-app/gatherly/internal/domain"
)

// HTTPClient talks to the gatherly REST backend.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg config.API) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *HTTPClient) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s/conversations", c.baseURL, url.PathEscape(userID))

	var conversations []domain.Conversation
	if err := c.getJSON(ctx, endpoint, &conversations); err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	return conversations, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context, conversationID string, page int) ([]domain.Message, error) {
	endpoint := fmt.Sprintf("%s/v1/conversations/%s/messages?page=%s",
		c.baseURL, url.PathEscape(conversationID), strconv.Itoa(page))

	var messages []domain.Message
	if err := c.getJSON(ctx, endpoint, &messages); err != nil {
		return nil, errors.Wrapf(err, "failed to list messages for conversation %s", conversationID)
	}
	return messages, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, conversationID string) error {
	endpoint := fmt.Sprintf("%s/v1/conversations/%s", c.baseURL, url.PathEscape(conversationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build delete request")
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to delete conversation %s", conversationID)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ConversationNotFoundError{ID: conversationID}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("delete conversation %s: unexpected status %d", conversationID, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
