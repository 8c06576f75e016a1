package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnassignedFolder is the sentinel clients send instead of a folder id.
const UnassignedFolder = "unassigned"

// FolderRef is a folder_id as sent by clients: null, "", "unassigned", a
// number or a numeric string. Set records whether the key was present.
type FolderRef struct {
	Set bool
	ID  *uint
}

func (r *FolderRef) UnmarshalJSON(data []byte) error {
	r.Set = true
	r.ID = nil

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	id, err := ParseFolderID(raw)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (r FolderRef) MarshalJSON() ([]byte, error) {
	if r.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.ID)
}

// FolderIDError reports a folder_id that is neither empty, "unassigned" nor
// a positive integer.
type FolderIDError struct {
	Value string
}

func (e *FolderIDError) Error() string {
	return fmt.Sprintf("invalid folder_id %q", e.Value)
}

// ParseFolderID normalizes "" and "unassigned" to nil.
func ParseFolderID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, UnassignedFolder) {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, &FolderIDError{Value: raw}
	}
	id := uint(n)
	return &id, nil
}

// Nullable distinguishes an absent JSON key (Set=false) from an explicit
// null (Set=true, Valid=false).
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil for null or absent values.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

type CreateFolderInput struct {
	Name string `json:"name"`
}

type CreateTaskInput struct {
	Title       *string    `json:"title"`
	FolderID    FolderRef  `json:"folder_id"`
	Completed   bool       `json:"completed"`
	IsImportant bool       `json:"isImportant"`
	Notes       string     `json:"notes"`
	DueDate     *string    `json:"dueDate"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// TaskPatch carries only the fields a client sent. Nil pointers and unset
// Nullables are left untouched on the stored task.
type TaskPatch struct {
	Title       *string          `json:"title"`
	Completed   *bool            `json:"completed"`
	IsImportant *bool            `json:"isImportant"`
	Notes       *string          `json:"notes"`
	FolderID    FolderRef        `json:"folder_id"`
	DueDate     Nullable[string] `json:"dueDate"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil &&
		p.Completed == nil &&
		p.IsImportant == nil &&
		p.Notes == nil &&
		!p.FolderID.Set &&
		!p.DueDate.Set
}

// Apply merges the patch onto task field by field.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = strings.TrimSpace(*p.Title)
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if p.IsImportant != nil {
		task.IsImportant = *p.IsImportant
	}
	if p.Notes != nil {
		task.Notes = *p.Notes
	}
	if p.FolderID.Set {
		task.FolderID = p.FolderID.ID
	}
	if p.DueDate.Set {
		task.DueDate = p.DueDate.Ptr()
	}
}

// ProcessTaskInput is the body of POST /process-task. TaskID accepts a number
// or a numeric string.
type ProcessTaskInput struct {
	TaskID   json.Number `json:"task_id"`
	TaskType string      `json:"task_type"`
	Query    string      `json:"query"`
}

// ProcessResult is a successful answer. Response is always present, even
// when the collaborator answered with an empty string.
type ProcessResult struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

type ProcessFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
