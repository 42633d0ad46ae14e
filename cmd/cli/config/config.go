package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the Asset Ledger API.
// It can be overridden with the ASSET_LEDGER_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("ASSET_LEDGER_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".asset-ledger", "token"), nil
}

// SaveToken stores the session token under the user's home directory.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// ReadToken returns the stored session token.
func ReadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// DeleteToken removes the stored session token. Missing file is fine.
func DeleteToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Do performs one API call. action selects the multiplexed operation; token
// may be empty for public actions; payload (when non-nil) is sent as JSON;
// the response body is decoded into out when out is non-nil.
func Do(method, action, token string, query map[string]string, payload, out any) error {
	u := APIURL() + "/api"
	sep := "?"
	if action != "" {
		u += "?action=" + action
		sep = "&"
	}
	for k, v := range query {
		u += sep + k + "=" + v
		sep = "&"
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return err
		}
	}
	return nil
}
