package disease

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Match is one candidate returned by an identification backend.
type Match struct {
	Name        string   `json:"name"`
	Probability float64  `json:"probability,omitempty"`
	Treatments  []string `json:"treatments,omitempty"`
	Source      string   `json:"source"`
}

// Identifier is the external identification collaborator. The local
// knowledge base consults it only when its own search comes up empty.
type Identifier interface {
	Identify(affectedParts, symptoms []string) ([]Match, error)
}

type httpIdentifier struct {
	endpoint string
	key      string
}

// NewHTTPIdentifier talks to the hosted identification API. Transport
// details stay here, out of the search logic.
func NewHTTPIdentifier(endpoint, key string) Identifier {
	return &httpIdentifier{endpoint: endpoint, key: key}
}

func (c *httpIdentifier) Identify(affectedParts, symptoms []string) ([]Match, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("identification service not configured")
	}

	reqBody := map[string]any{
		"affected_parts": affectedParts,
		"symptoms":       symptoms,
	}
	b, _ := json.Marshal(reqBody)

	httpc := &http.Client{Timeout: 25 * time.Second}
	req, err := http.NewRequest("POST", strings.TrimRight(c.endpoint, "/")+"/v1/identify", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identification service returned %d", resp.StatusCode)
	}

	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("identification response unreadable: %w", err)
	}

	for i := range out.Matches {
		out.Matches[i].Source = "external"
	}
	return out.Matches, nil
}
