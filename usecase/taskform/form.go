package taskform

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/worklane/boardsync/domain"
	"github.com/worklane/boardsync/repository"
	"github.com/worklane/boardsync/usecase"
)

// Fields is the editable state of one open form. Edits are local until
// submit; several field changes batch into a single remote write.
type Fields struct {
	Workspace   int64           `json:"workspace,omitempty"`
	Team        int64           `json:"team,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Status      domain.Status   `json:"status"`
	Assignees   []int64         `json:"assignees"`
	TaskList    int64           `json:"task_list,omitempty"`
	IsPublished bool            `json:"is_published"`
}

// Edits is a partial change set applied to an open form. Nil means "leave
// untouched"; Workspace changes additionally clear the team selection and
// reload the dependent dropdowns.
type Edits struct {
	Workspace   *int64           `json:"workspace,omitempty"`
	Team        *int64           `json:"team,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Priority    *domain.Priority `json:"priority,omitempty"`
	Status      *domain.Status   `json:"status,omitempty"`
	Assignee    *int64           `json:"assignee,omitempty"`
	TaskList    *int64           `json:"task_list,omitempty"`
}

// View is the render-ready projection of a form.
type View struct {
	ID         string        `json:"id"`
	State      State         `json:"state"`
	Editing    bool          `json:"editing"`
	TaskID     int64         `json:"task_id,omitempty"`
	Fields     Fields        `json:"fields"`
	Teams      []domain.Team `json:"teams"`
	Users      []domain.User `json:"users"`
	CanPublish bool          `json:"can_publish"`
	Error      string        `json:"error,omitempty"`
}

// Form owns one task's editable fields and enforces local validation before
// any network call. All three creation variants and edit mode share this
// machinery; only the required-field set and payload shape differ.
type Form struct {
	id       string
	sess     *domain.Session
	creation CreationContext
	task     *domain.Task

	tasks     repository.TaskStore
	directory repository.DirectoryStore
	onSaved   usecase.ReloadFunc
	onClosed  func()
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	fields      Fields
	teams       []domain.Team
	users       []domain.User
	usersLoaded bool
	lastError   string
	closed      bool
}

type deps struct {
	tasks     repository.TaskStore
	directory repository.DirectoryStore
	onSaved   usecase.ReloadFunc
	logger    *zap.Logger
}

func newForm(id string, sess *domain.Session, d deps) *Form {
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.onSaved == nil {
		d.onSaved = usecase.NopReload
	}
	return &Form{
		id:        id,
		sess:      sess,
		tasks:     d.tasks,
		directory: d.directory,
		onSaved:   d.onSaved,
		logger:    d.logger,
		state:     StateClosed,
	}
}

// openCreate puts the form into create mode for the given context variant.
func (f *Form) openCreate(ctx context.Context, creation CreationContext) {
	f.mu.Lock()
	f.creation = creation
	f.state = StateOpenCreate
	f.fields = Fields{
		Workspace: creation.WorkspaceID,
		Team:      creation.TeamID,
		TaskList:  creation.ListID,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusTodo,
		Assignees: []int64{},
	}
	workspaceID := f.fields.Workspace
	f.mu.Unlock()

	if workspaceID != 0 {
		f.loadOptions(ctx, workspaceID)
	}
}

// openEdit seeds every editable field from the task's current values,
// assignees reduced to identifiers.
func (f *Form) openEdit(ctx context.Context, task *domain.Task, workspaceID int64) {
	f.mu.Lock()
	f.task = task
	f.state = StateOpenEdit
	f.fields = Fields{
		Workspace:   workspaceID,
		Team:        task.Team,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Assignees:   task.AssigneeIDs(),
		TaskList:    task.TaskList,
		IsPublished: task.IsPublished,
	}
	if f.fields.Assignees == nil {
		f.fields.Assignees = []int64{}
	}
	f.mu.Unlock()

	if workspaceID != 0 {
		f.loadOptions(ctx, workspaceID)
	}
}

// Apply merges a partial edit into the form. A workspace change clears the
// team selection, since a team is only valid within one workspace, and
// reloads teams and users for the new workspace.
func (f *Form) Apply(ctx context.Context, edits Edits) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return domain.ErrFormNotFound
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return domain.NewValidationError("submit in progress")
	}

	workspaceChanged := false
	if edits.Workspace != nil && *edits.Workspace != f.fields.Workspace {
		f.fields.Workspace = *edits.Workspace
		f.fields.Team = 0
		f.teams = nil
		f.users = nil
		f.usersLoaded = false
		workspaceChanged = true
	}
	if edits.Team != nil {
		f.fields.Team = *edits.Team
	}
	if edits.Title != nil {
		f.fields.Title = *edits.Title
	}
	if edits.Description != nil {
		f.fields.Description = *edits.Description
	}
	if edits.Priority != nil && edits.Priority.Valid() {
		f.fields.Priority = *edits.Priority
	}
	if edits.Status != nil && edits.Status.Valid() {
		// Local only; persisted on the next submit.
		f.fields.Status = *edits.Status
	}
	if edits.Assignee != nil {
		if *edits.Assignee == 0 {
			f.fields.Assignees = []int64{}
		} else {
			f.fields.Assignees = []int64{*edits.Assignee}
		}
	}
	if edits.TaskList != nil {
		f.fields.TaskList = *edits.TaskList
	}
	workspaceID := f.fields.Workspace
	f.mu.Unlock()

	if workspaceChanged && workspaceID != 0 {
		f.loadOptions(ctx, workspaceID)
	}
	return nil
}

// loadOptions fetches the dependent dropdowns for the workspace. Failures
// surface as an inline notice but keep the form open and editable.
func (f *Form) loadOptions(ctx context.Context, workspaceID int64) {
	teams, teamErr := f.directory.ListTeams(ctx, f.sess, workspaceID)
	users, userErr := f.directory.ListUsers(ctx, f.sess, workspaceID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.fields.Workspace != workspaceID {
		// Superseded by a newer workspace selection or a close.
		return
	}
	if teamErr != nil {
		f.logger.Warn("team load failed", zap.Int64("workspace", workspaceID), zap.Error(teamErr))
		f.lastError = "failed to load teams"
	} else {
		f.teams = teams
	}
	if userErr != nil {
		f.logger.Warn("user load failed", zap.Int64("workspace", workspaceID), zap.Error(userErr))
		f.lastError = "failed to load assignees"
	} else {
		f.users = users
		f.applyDefaultAssignee()
	}
}

// applyDefaultAssignee pre-selects the current user on the first users load.
// The choice stays overridable before submit. Callers hold f.mu.
func (f *Form) applyDefaultAssignee() {
	if f.usersLoaded {
		return
	}
	f.usersLoaded = true
	if len(f.fields.Assignees) > 0 || f.sess == nil {
		return
	}
	for _, u := range f.users {
		if u.ID == f.sess.UserID {
			f.fields.Assignees = []int64{u.ID}
			return
		}
	}
}

// Submit validates locally, then creates or patches the task. Validation
// failures never reach the network. On success the reload hook fires once
// and the form closes; on failure the form stays open for retry.
func (f *Form) Submit(ctx context.Context) error {
	return f.submit(ctx, false)
}

// Publish is the one-way variant of submit, offered only in edit mode while
// the task is unpublished. It forces is_published regardless of the form
// toggle and is irreversible from the UI.
func (f *Form) Publish(ctx context.Context) error {
	f.mu.Lock()
	if f.task == nil {
		f.mu.Unlock()
		return domain.NewValidationError("publish is only available while editing")
	}
	if f.task.IsPublished {
		f.mu.Unlock()
		return domain.NewValidationError("task is already published")
	}
	f.mu.Unlock()
	return f.submit(ctx, true)
}

func (f *Form) submit(ctx context.Context, publish bool) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return domain.ErrFormNotFound
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return domain.NewValidationError("submit in progress")
	}

	if err := f.validateLocked(); err != nil {
		f.lastError = err.Message
		f.mu.Unlock()
		return err
	}

	prev := f.state
	f.state = StateSubmitting
	f.lastError = ""
	fields := f.fields
	editing := f.task != nil
	var taskID int64
	if editing {
		taskID = f.task.ID
	}
	creation := f.creation
	sess := f.sess
	f.mu.Unlock()

	var err error
	if editing {
		_, err = f.tasks.Update(ctx, sess, taskID, buildPatch(fields, publish))
	} else {
		_, err = f.tasks.Create(ctx, sess, buildPayload(creation, fields, publish))
	}

	f.mu.Lock()
	if f.closed {
		// The form went away mid-flight. Never write to it, but a write
		// that did land still refreshes the board.
		f.mu.Unlock()
		if err == nil {
			f.onSaved(ctx, sess, fields.Workspace)
		}
		return err
	}
	if err != nil {
		f.state = prev
		f.lastError = submissionMessage(err)
		f.mu.Unlock()
		return err
	}
	f.state = StateClosed
	f.closed = true
	f.mu.Unlock()

	if f.onClosed != nil {
		f.onClosed()
	}
	f.onSaved(ctx, sess, fields.Workspace)
	return nil
}

// validateLocked enforces the variant's required-field set. Callers hold f.mu.
func (f *Form) validateLocked() *domain.Error {
	title := strings.TrimSpace(f.fields.Title)
	if f.task != nil {
		if title == "" {
			return domain.NewValidationError(msgSummaryRequired)
		}
		return nil
	}
	switch f.creation.Kind {
	case WorkspaceScoped:
		if title == "" || f.fields.Workspace == 0 {
			return domain.NewValidationError(msgWorkspaceSummaryRequired)
		}
	case ColumnScoped:
		if title == "" || f.fields.TaskList == 0 {
			return domain.NewValidationError(msgSummaryStatusRequired)
		}
	default:
		if title == "" {
			return domain.NewValidationError(msgSummaryRequired)
		}
	}
	return nil
}

// Close tears the form down. An in-flight submission is not retracted; its
// late response is discarded instead.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.state = StateClosed
}

// View projects the form for rendering.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		ID:      f.id,
		State:   f.state,
		Editing: f.task != nil,
		Fields:  f.fields,
		Teams:   f.teams,
		Users:   f.users,
		Error:   f.lastError,
	}
	if f.task != nil {
		v.TaskID = f.task.ID
		v.CanPublish = !f.task.IsPublished
	}
	return v
}

func buildPayload(creation CreationContext, fields Fields, publish bool) domain.TaskPayload {
	payload := domain.TaskPayload{
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		Status:      fields.Status,
		Assignees:   fields.Assignees,
		Team:        fields.Team,
		IsPublished: fields.IsPublished || publish,
	}
	switch creation.Kind {
	case WorkspaceScoped:
		payload.Workspace = fields.Workspace
	case ColumnScoped:
		payload.TaskList = fields.TaskList
	case TeamScoped:
		payload.Team = creation.TeamID
	}
	return payload
}

func buildPatch(fields Fields, publish bool) domain.TaskPatch {
	published := fields.IsPublished || publish
	patch := domain.TaskPatch{
		Title:       &fields.Title,
		Description: &fields.Description,
		Priority:    &fields.Priority,
		Status:      &fields.Status,
		Assignees:   fields.Assignees,
		IsPublished: &published,
	}
	if fields.Team != 0 {
		patch.Team = &fields.Team
	}
	if fields.TaskList != 0 {
		patch.TaskList = &fields.TaskList
	}
	return patch
}

func submissionMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "Something went wrong"
}
