// Package clients provides HTTP clients for the vhost gateway APIs.
package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ruteri/ipfs-vhost-gateway/api"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// VhostClient talks to a gateway's control API.
type VhostClient struct {
	// ServerAddr is the base URL of the gateway's control API, e.g.
	// "http://127.0.0.1:8080".
	ServerAddr string

	// HTTPClient is used for requests; http.DefaultClient if nil.
	HTTPClient *http.Client
}

func (c *VhostClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *VhostClient) do(method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request control API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("control API returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("control API returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not parse control API response: %w", err)
		}
	}
	return nil
}

// List returns all registered vhosts.
func (c *VhostClient) List() ([]interfaces.VhostEntry, error) {
	var entries []interfaces.VhostEntry
	if err := c.do(http.MethodGet, api.ControlPathPrefix+"/vhosts", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns a single vhost entry.
func (c *VhostClient) Get(name string) (interfaces.VhostEntry, error) {
	var entry interfaces.VhostEntry
	err := c.do(http.MethodGet, api.ControlPathPrefix+"/vhosts/"+name, nil, &entry)
	return entry, err
}

// Create registers a new vhost binding.
func (c *VhostClient) Create(name, cid string) error {
	return c.do(http.MethodPost, api.ControlPathPrefix+"/vhosts", api.CreateVhostRequest{Name: name, CID: cid}, nil)
}

// Update re-points an existing vhost at a new CID.
func (c *VhostClient) Update(name, cid string) error {
	return c.do(http.MethodPut, api.ControlPathPrefix+"/vhosts/"+name, api.UpdateVhostRequest{CID: cid}, nil)
}

// Delete removes a vhost binding.
func (c *VhostClient) Delete(name string) error {
	return c.do(http.MethodDelete, api.ControlPathPrefix+"/vhosts/"+name, nil, nil)
}
