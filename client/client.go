package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/ws"
)

// Client talks to the chat API with signed requests and listens to the
// WebSocket event stream. Create it with Login or Register, then Subscribe
// to receive pushes.
type Client struct {
	baseURL string
	http    *http.Client

	sessionID string
	secret    []byte
	self      model.UserPublic

	mu       sync.Mutex
	conn     *websocket.Conn
	listenWg sync.WaitGroup
	handlers []EventHandler
}

// EventHandler receives decoded server events. onlineIDs is non-nil only for
// presence snapshots, msg only for new messages.
type EventHandler func(event string, msg *model.Message, onlineIDs []string)

type sessionResponse struct {
	SessionID     string           `json:"session_id"`
	SessionSecret string           `json:"session_secret"`
	User          model.UserPublic `json:"user"`
}

type apiError struct {
	Error string `json:"error"`
}

// Login authenticates against the API and returns a ready client.
func Login(ctx context.Context, baseURL, email, password string) (*Client, error) {
	return authenticate(ctx, baseURL, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns a ready client.
func Register(ctx context.Context, baseURL, fullName, email, password string) (*Client, error) {
	return authenticate(ctx, baseURL, "/api/auth/register", map[string]string{
		"full_name": fullName,
		"email":     email,
		"password":  password,
	})
}

func authenticate(ctx context.Context, baseURL, path string, body map[string]string) (*Client, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	secret, err := base64.StdEncoding.DecodeString(sr.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("decode session secret: %w", err)
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		sessionID: sr.SessionID,
		secret:    secret,
		self:      sr.User,
	}, nil
}

// Self returns the authenticated user's public profile.
func (c *Client) Self() model.UserPublic { return c.self }

// Logout revokes the session and tears down the WebSocket.
func (c *Client) Logout(ctx context.Context) error {
	c.Unsubscribe()
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// SidebarUsers returns every other registered user.
func (c *Client) SidebarUsers(ctx context.Context) ([]model.UserPublic, error) {
	var users []model.UserPublic
	err := c.do(ctx, http.MethodGet, "/api/messages/users", nil, &users)
	return users, err
}

// Groups returns the groups the authenticated user belongs to.
func (c *Client) Groups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := c.do(ctx, http.MethodGet, "/api/groups", nil, &groups)
	return groups, err
}

// CreateGroup creates a group with the given members; the caller becomes
// admin.
func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []string) (*model.Group, error) {
	var g model.Group
	err := c.do(ctx, http.MethodPost, "/api/groups", map[string]any{
		"name":       name,
		"member_ids": memberIDs,
	}, &g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// DirectHistory returns the conversation with a peer, oldest first.
func (c *Client) DirectHistory(ctx context.Context, peerID string) ([]model.Message, error) {
	var msgs []model.Message
	err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(peerID), nil, &msgs)
	return msgs, err
}

// GroupHistory returns a group's conversation, oldest first.
func (c *Client) GroupHistory(ctx context.Context, groupID string) ([]model.Message, error) {
	var msgs []model.Message
	err := c.do(ctx, http.MethodGet, "/api/messages/group/"+url.PathEscape(groupID), nil, &msgs)
	return msgs, err
}

// SendDirect sends a message to a user.
func (c *Client) SendDirect(ctx context.Context, receiverID, text, imageURL string) (*model.Message, error) {
	var m model.Message
	err := c.do(ctx, http.MethodPost, "/api/messages/send/"+url.PathEscape(receiverID), map[string]string{
		"text":      text,
		"image_url": imageURL,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SendGroup sends a message to a group.
func (c *Client) SendGroup(ctx context.Context, groupID, text, imageURL string) (*model.Message, error) {
	var m model.Message
	err := c.do(ctx, http.MethodPost, "/api/messages/send/group/"+url.PathEscape(groupID), map[string]string{
		"text":      text,
		"image_url": imageURL,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upload stores an attachment and returns its serving URL.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	// Multipart bodies are signed as empty; the server mirrors this.
	c.sign(req, nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Subscribe opens the WebSocket and dispatches events to handler until
// Unsubscribe is called or the connection drops.
func (c *Client) Subscribe(ctx context.Context, handler EventHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.handlers = append(c.handlers, handler)
		return nil
	}

	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("dial ws: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	c.conn = conn
	c.handlers = []EventHandler{handler}
	c.listenWg.Add(1)
	go c.listen(conn)
	return nil
}

// Unsubscribe closes the WebSocket and waits for the listener to exit.
func (c *Client) Unsubscribe() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.handlers = nil
	c.mu.Unlock()
	if conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	conn.Close()
	c.listenWg.Wait()
}

func (c *Client) listen(conn *websocket.Conn) {
	defer c.listenWg.Done()
	defer conn.Close()
	for {
		var evt struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&evt); err != nil {
			return
		}
		c.mu.Lock()
		handlers := append([]EventHandler(nil), c.handlers...)
		c.mu.Unlock()
		switch evt.Type {
		case ws.EventNewMessage:
			var m model.Message
			if err := json.Unmarshal(evt.Payload, &m); err != nil {
				continue
			}
			for _, h := range handlers {
				h(evt.Type, &m, nil)
			}
		case ws.EventOnlineUsers:
			var ids []string
			if err := json.Unmarshal(evt.Payload, &ids); err != nil {
				continue
			}
			for _, h := range handlers {
				h(evt.Type, nil, ids)
			}
		}
	}
}

// websocketURL builds the signed /ws URL. The upgrade request cannot carry
// custom headers from browsers, so the credentials ride in the query string;
// this client does the same for parity with the server's checks.
func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	q := u.Query()
	q.Set("session_id", c.sessionID)
	q.Set("timestamp", ts)
	q.Set("signature", middleware.Sign(c.secret, http.MethodGet, u.Path, nil, ts))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// do performs a signed JSON request and decodes the response into out (when
// non-nil).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.sign(req, payload)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) sign(req *http.Request, body []byte) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Session-Id", c.sessionID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", middleware.Sign(c.secret, req.Method, req.URL.Path, body, ts))
}

func decodeError(resp *http.Response) error {
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Error != "" {
		return fmt.Errorf("api: %s (%d)", ae.Error, resp.StatusCode)
	}
	return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
}
