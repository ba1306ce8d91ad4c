package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var rooms []Room
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"name":"R1"},{"id":"a-9","name":"R2"},{"id":null,"name":"R3"}]`), &rooms))

	assert.Equal(t, ID("7"), rooms[0].ID)
	assert.Equal(t, ID("a-9"), rooms[1].ID)
	assert.Equal(t, ID(""), rooms[2].ID)
}

func TestIDRejectsObjects(t *testing.T) {
	var room Room
	require.Error(t, json.Unmarshal([]byte(`{"id":{"x":1},"name":"R1"}`), &room))
}

func TestIDMarshalsAsString(t *testing.T) {
	raw, err := json.Marshal(map[string]ID{"subject_id": "12"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject_id":"12"}`, string(raw))
}

func TestFacultySubjectCodes(t *testing.T) {
	var f Faculty
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Ada","subjects":[{"id":1,"code":"MA101"},{"id":2,"code":"PH101"}]}`), &f))

	assert.Equal(t, []string{"MA101", "PH101"}, f.SubjectCodes())
	assert.Empty(t, Faculty{}.SubjectCodes())
}

func TestGenerationResponseDecode(t *testing.T) {
	var resp GenerationResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status":"success","results":[{"option":1,"fitness":0,"timetable":[{"batch":"B1","day":"Mon","timeslot":"9-10","subject":"Math","faculty":"A","room":"R1"}]}]}`), &resp))

	require.True(t, resp.Succeeded())
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Math", resp.Results[0].Timetable[0].Subject)
}
