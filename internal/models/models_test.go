package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"go-do-list/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestTask_JSONShape(t *testing.T) {
	created := time.Date(2025, 4, 14, 13, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:          1,
		FolderID:    uintPtr(2),
		Title:       "Pay bills",
		IsImportant: true,
		DueDate:     strPtr("2025-05-01"),
		CreatedAt:   created,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, float64(1), out["id"])
	assert.Equal(t, float64(2), out["folder_id"])
	assert.Equal(t, "Pay bills", out["title"])
	assert.Equal(t, false, out["completed"])
	assert.Equal(t, true, out["isImportant"])
	assert.Equal(t, "", out["notes"])
	assert.Equal(t, "2025-05-01", out["dueDate"])
	assert.Equal(t, "2025-04-14T13:00:00Z", out["createdAt"])
	assert.NotContains(t, out, "Files")
	assert.NotContains(t, out, "is_important")
}

func TestTask_UnassignedFolderIsNull(t *testing.T) {
	data, err := json.Marshal(models.Task{ID: 3, Title: "Loose"})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"folder_id":null`)
	assert.Contains(t, string(data), `"dueDate":null`)
}

func TestTaskFile_Ingested(t *testing.T) {
	assert.False(t, models.TaskFile{}.Ingested())
	assert.False(t, models.TaskFile{EmbeddingID: strPtr("")}.Ingested())
	assert.True(t, models.TaskFile{EmbeddingID: strPtr("doc-1")}.Ingested())
}

func TestFolderRef_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		set     bool
		want    *uint
		wantErr bool
	}{
		{"absent", `{}`, false, nil, false},
		{"null", `{"folder_id":null}`, true, nil, false},
		{"empty string", `{"folder_id":""}`, true, nil, false},
		{"unassigned", `{"folder_id":"unassigned"}`, true, nil, false},
		{"number", `{"folder_id":4}`, true, uintPtr(4), false},
		{"numeric string", `{"folder_id":"12"}`, true, uintPtr(12), false},
		{"zero", `{"folder_id":0}`, true, nil, true},
		{"garbage", `{"folder_id":"work"}`, true, nil, true},
		{"bool", `{"folder_id":true}`, true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in models.CreateTaskInput
			err := json.Unmarshal([]byte(tt.body), &in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, in.FolderID.Set)
			assert.Equal(t, tt.want, in.FolderID.ID)
		})
	}
}

func TestTaskPatch_Empty(t *testing.T) {
	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"unknown": 1}`), &patch))
	assert.True(t, patch.Empty())

	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": null}`), &patch))
	assert.False(t, patch.Empty())
}

func TestTaskPatch_ApplyOnlyPresentFields(t *testing.T) {
	task := models.Task{
		ID:          1,
		FolderID:    uintPtr(1),
		Title:       "Pay bills",
		Completed:   false,
		IsImportant: true,
		Notes:       "electricity",
		DueDate:     strPtr("2025-05-01"),
	}

	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"x"}`), &patch))
	patch.Apply(&task)

	assert.Equal(t, "x", task.Notes)
	assert.Equal(t, "Pay bills", task.Title)
	assert.False(t, task.Completed)
	assert.True(t, task.IsImportant)
	assert.Equal(t, uintPtr(1), task.FolderID)
	assert.Equal(t, strPtr("2025-05-01"), task.DueDate)
}

func TestTaskPatch_ApplyClearsNullables(t *testing.T) {
	task := models.Task{Title: "t", FolderID: uintPtr(5), DueDate: strPtr("tomorrow")}

	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"folder_id":"unassigned","dueDate":null,"completed":true}`), &patch))
	patch.Apply(&task)

	assert.Nil(t, task.FolderID)
	assert.Nil(t, task.DueDate)
	assert.True(t, task.Completed)
}

func TestTaskPatch_ApplyBooleansFalse(t *testing.T) {
	task := models.Task{Title: "t", Completed: true, IsImportant: true}

	patch := models.TaskPatch{Completed: boolPtr(false), IsImportant: boolPtr(false)}
	patch.Apply(&task)

	assert.False(t, task.Completed)
	assert.False(t, task.IsImportant)
}

func TestProcessTaskInput_TaskID(t *testing.T) {
	var in models.ProcessTaskInput
	require.NoError(t, json.Unmarshal([]byte(`{"task_id":"7","task_type":"summarize"}`), &in))
	id, err := in.TaskID.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "summarize", in.TaskType)

	require.Error(t, json.Unmarshal([]byte(`{"task_id":"seven"}`), &in))
}

func TestProcessResult_ShapeKeepsEmptyResponse(t *testing.T) {
	data, err := json.Marshal(models.ProcessResult{Success: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"response":""}`, string(data))

	data, err = json.Marshal(models.ProcessFailure{Error: "no files attached to task"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"no files attached to task"}`, string(data))
}
