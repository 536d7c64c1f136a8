package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/goccy/go-json"
)

// Client talks to a casetree server. It serves as the syncer's
// ReorderClient and Source, as the editor's Mutator and as the CLI's
// project store in remote mode.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (c *Client) Reorder(ctx context.Context, req contract.ReorderRequest) error {
	var body bytes.Buffer
	if err := req.Encode(&body); err != nil {
		return fmt.Errorf("encoding reorder: %w", err)
	}
	return c.do(ctx, http.MethodPost, projectPath(req.ProjectID, "reorder"), &body, nil)
}

func (c *Client) Projects(ctx context.Context) ([]*domain.Project, error) {
	var list []contract.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &list); err != nil {
		return nil, err
	}
	out := make([]*domain.Project, len(list))
	for i, p := range list {
		out[i] = p.Domain()
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, p *domain.Project) error {
	var created contract.Project
	if err := c.send(ctx, http.MethodPost, "/api/projects", contract.FromProject(p), &created); err != nil {
		return err
	}
	*p = *created.Domain()
	return nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Suites(ctx context.Context, projectID string) ([]domain.Suite, error) {
	var list []contract.Suite
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "suites"), nil, &list); err != nil {
		return nil, err
	}
	out := make([]domain.Suite, len(list))
	for i, s := range list {
		out[i] = s.Domain()
	}
	return out, nil
}

func (c *Client) Sections(ctx context.Context, projectID string) ([]domain.Section, error) {
	var list []contract.Section
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "sections"), nil, &list); err != nil {
		return nil, err
	}
	out := make([]domain.Section, len(list))
	for i, s := range list {
		d, err := s.Domain()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.ID, err)
		}
		out[i] = d
	}
	return out, nil
}

func (c *Client) TestCases(ctx context.Context, projectID string) ([]domain.TestCase, error) {
	var list []contract.TestCase
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "test-cases"), nil, &list); err != nil {
		return nil, err
	}
	out := make([]domain.TestCase, len(list))
	for i, tc := range list {
		out[i] = tc.Domain()
	}
	return out, nil
}

func (c *Client) CreateSuite(ctx context.Context, s *domain.Suite) error {
	var created contract.Suite
	if err := c.send(ctx, http.MethodPost, projectPath(s.ProjectID, "suites"), contract.FromSuite(s), &created); err != nil {
		return err
	}
	*s = created.Domain()
	return nil
}

func (c *Client) CreateSection(ctx context.Context, s *domain.Section) error {
	var created contract.Section
	if err := c.send(ctx, http.MethodPost, projectPath(s.ProjectID, "sections"), contract.FromSection(s), &created); err != nil {
		return err
	}
	d, err := created.Domain()
	if err != nil {
		return err
	}
	*s = d
	return nil
}

func (c *Client) CreateTestCase(ctx context.Context, tc *domain.TestCase) error {
	var created contract.TestCase
	if err := c.send(ctx, http.MethodPost, projectPath(tc.ProjectID, "test-cases"), contract.FromTestCase(tc), &created); err != nil {
		return err
	}
	*tc = created.Domain()
	return nil
}

func (c *Client) Rename(ctx context.Context, kind domain.NodeKind, id, name string) error {
	return c.send(ctx, http.MethodPatch, nodePath(kind, id), contract.RenameRequest{Name: name}, nil)
}

func (c *Client) Delete(ctx context.Context, kind domain.NodeKind, id string) error {
	return c.do(ctx, http.MethodDelete, nodePath(kind, id), nil, nil)
}

func projectPath(projectID, rest string) string {
	return "/api/projects/" + url.PathEscape(projectID) + "/" + rest
}

func nodePath(kind domain.NodeKind, id string) string {
	return "/api/nodes/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var er contract.ErrorResponse
		if json.Unmarshal(data, &er) == nil && er.Code != "" {
			se.Code, se.Message = er.Code, er.Error
		}
		return se
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
