package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
)

// Client talks to the remote task store over HTTP. It implements every
// repository interface backed by the store; authentication is the bearer
// token carried by the session passed to each call.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient builds a store client rooted at baseURL. Every request carries a
// timeout; expiry is reported like any other remote failure.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: trimTrailingSlash(baseURL),
		timeout: timeout,
		logger:  logger,
	}
}

var _ repository.BoardStore = (*Client)(nil)
var _ repository.TaskStore = (*Client)(nil)
var _ repository.DirectoryStore = (*Client)(nil)

// ListTaskLists returns the workspace's columns in store order.
func (c *Client) ListTaskLists(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.TaskList, error) {
	var lists []domain.TaskList
	path := fmt.Sprintf("/task-lists/?workspace=%d", workspaceID)
	if err := c.read(ctx, sess, path, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListTasks returns every task visible to the caller in the workspace.
func (c *Client) ListTasks(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	path := "/tasks/"
	if workspaceID != 0 {
		path = fmt.Sprintf("/tasks/?workspace=%d", workspaceID)
	}
	if err := c.read(ctx, sess, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create posts a new task to the store.
func (c *Client) Create(ctx context.Context, sess *domain.Session, payload domain.TaskPayload) (*domain.Task, error) {
	var task domain.Task
	if err := c.write(ctx, sess, fasthttp.MethodPost, "/tasks/", payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update patches a task with only the fields the user actually edited.
func (c *Client) Update(ctx context.Context, sess *domain.Session, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	var task domain.Task
	path := fmt.Sprintf("/tasks/%d/", id)
	if err := c.write(ctx, sess, fasthttp.MethodPatch, path, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListWorkspaces(ctx context.Context, sess *domain.Session) ([]domain.Workspace, error) {
	var workspaces []domain.Workspace
	if err := c.read(ctx, sess, "/workspaces/", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, sess *domain.Session, name string) (*domain.Workspace, error) {
	var workspace domain.Workspace
	body := map[string]string{"name": name}
	if err := c.write(ctx, sess, fasthttp.MethodPost, "/workspaces/", body, &workspace); err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ListTeams returns the teams of one workspace. The store calls them projects.
func (c *Client) ListTeams(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.Team, error) {
	var teams []domain.Team
	path := fmt.Sprintf("/projects/?workspace=%d", workspaceID)
	if err := c.read(ctx, sess, path, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) CreateTeam(ctx context.Context, sess *domain.Session, name string, workspaceID int64) (*domain.Team, error) {
	var team domain.Team
	body := map[string]any{"name": name, "workspace": workspaceID}
	if err := c.write(ctx, sess, fasthttp.MethodPost, "/projects/", body, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *Client) ListUsers(ctx context.Context, sess *domain.Session, workspaceID int64) ([]domain.User, error) {
	var users []domain.User
	path := fmt.Sprintf("/users/?workspace=%d", workspaceID)
	if err := c.read(ctx, sess, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) SearchUsers(ctx context.Context, sess *domain.Session, query string) ([]domain.User, error) {
	var users []domain.User
	path := "/users/search/?q=" + url.QueryEscape(query)
	if err := c.read(ctx, sess, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AddMember(ctx context.Context, sess *domain.Session, workspaceID int64, email string) error {
	body := map[string]any{"workspace": workspaceID, "email": email}
	return c.write(ctx, sess, fasthttp.MethodPost, "/add-workspace-member/", body, nil)
}

// Ping checks store reachability for the connection monitor.
func (c *Client) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/health")
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoTimeout(req, resp, c.deadline(ctx)); err != nil {
		return err
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		return fmt.Errorf("store health returned %d", resp.StatusCode())
	}
	return nil
}

// read issues a GET and classifies any failure as a load error.
func (c *Client) read(ctx context.Context, sess *domain.Session, path string, out any) error {
	status, body, err := c.do(ctx, sess, fasthttp.MethodGet, path, nil)
	if err != nil {
		return domain.NewLoadError("task store unreachable", err)
	}
	if status >= fasthttp.StatusBadRequest {
		return domain.NewLoadError(storeDetail(body, "failed to load from task store"), nil)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return domain.NewLoadError("malformed task store response", err)
		}
	}
	return nil
}

// write issues a mutating request and classifies any failure as a
// submission error, preferring the store-provided detail.
func (c *Client) write(ctx context.Context, sess *domain.Session, method, path string, in, out any) error {
	status, body, err := c.do(ctx, sess, method, path, in)
	if err != nil {
		return domain.NewSubmissionError("task store unreachable", err)
	}
	if status >= fasthttp.StatusBadRequest {
		return domain.NewSubmissionError(storeDetail(body, "Something went wrong"), nil)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return domain.NewSubmissionError("malformed task store response", err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, sess *domain.Session, method, path string, in any) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.deadline(ctx)); err != nil {
		c.logger.Warn("store request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}

// deadline honours a caller deadline when it is tighter than the configured
// request timeout.
func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// storeDetail extracts the store's error message from a failure body.
func storeDetail(body []byte, fallback string) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return fallback
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
