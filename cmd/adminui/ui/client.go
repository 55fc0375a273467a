package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trove/app/dto"
)

// Client is an authenticated session against the REST API. Admin and
// super-admin tokens unlock the /users routes the console is built around.
type Client struct {
	BaseURL string
	Token   string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 15 * time.Second}}
}

func (c *Client) do(method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e dto.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("%s", e.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (c *Client) Login(baseURL, email, password string) error {
	c.BaseURL = baseURL
	var resp dto.LoginResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

func (c *Client) Logout() {
	if c.Token == "" {
		return
	}
	_ = c.do(http.MethodPost, "/auth/logout", nil, nil)
	c.Token = ""
}

func (c *Client) ListUsers() ([]dto.UserResponse, error) {
	var users []dto.UserResponse
	err := c.do(http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) GetUser(id uint) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SetLocked(id uint, locked bool) (*dto.UserResponse, error) {
	var user dto.UserResponse
	err := c.do(http.MethodPut, fmt.Sprintf("/users/%d", id), map[string]bool{"locked": locked}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SetRole(id uint, role string) (*dto.UserResponse, error) {
	var user dto.UserResponse
	err := c.do(http.MethodPut, fmt.Sprintf("/users/%d", id), map[string]string{"role": role}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(id uint) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}
